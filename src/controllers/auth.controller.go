package controllers

import (
	"errors"
	"log"
	"net/http"
	"parkres/src/db"
	"parkres/src/models"
	"parkres/src/types"
	"parkres/src/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func AuthRegister(ctx *gin.Context) (token *string, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return nil, http.StatusInternalServerError, errors.New("could not complete registration")
	}

	user := models.User{
		Username:     body.Username,
		Name:         body.Name,
		PasswordHash: string(hash),
		Role:         types.ROLE_USER,
	}
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.New("username is already taken")
			}
			log.Printf("Error creating user: %s\n", err.Error())
			return errors.New("could not complete registration")
		}
		return nil
	})
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	jwt, err := utils.GenerateJWT(&user)
	if err != nil {
		log.Printf("Error signing token for user [%d]: %s\n", user.ID, err.Error())
		return nil, http.StatusInternalServerError, errors.New("could not complete registration")
	}
	return &jwt, http.StatusCreated, nil
}

func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	db := db.GetDb()
	var user models.User
	if err := db.
		Model(&models.User{}).
		Where(&models.User{Username: body.Username}).
		First(&user).
		Error; err != nil {
		log.Printf("login failed for %q: %s\n", body.Username, err.Error())
		return nil, http.StatusUnauthorized, errors.New("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid username or password")
	}

	jwt, err := utils.GenerateJWT(&user)
	if err != nil {
		log.Printf("Error signing token for user [%d]: %s\n", user.ID, err.Error())
		return nil, http.StatusInternalServerError, errors.New("could not complete login")
	}
	return &jwt, http.StatusOK, nil
}
