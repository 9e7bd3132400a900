package main

import (
	"log"
	"net/http"
	"parkres/src/db"
	"parkres/src/models"
	"parkres/src/types"
	"parkres/src/utils"

	"github.com/gin-gonic/gin"
)

func staffRole(ctx *gin.Context) types.Role {
	role, _ := ctx.Get("role")
	r, _ := role.(types.Role)
	return r
}

func staffHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/staff/dashboard", func(ctx *gin.Context) {
			counts, err := utils.GetSpotCounts()
			if err != nil {
				log.Printf("Error retrieving spot counts: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			waiting, err := utils.GetWaitingBookings()
			if err != nil {
				log.Printf("Error retrieving waiting Bookings: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var approved []models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{Status: types.BOOKING_APPROVED}).
				Preload("ParkingSpot").
				Preload("User").
				Order("approved_at desc").
				Limit(50).
				Find(&approved).
				Error; err != nil {
				log.Printf("Error retrieving approved Bookings: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			var recent []models.Booking
			if err := db.
				Model(&models.Booking{}).
				Preload("User").
				Order("created_at desc").
				Limit(10).
				Find(&recent).
				Error; err != nil {
				log.Printf("Error retrieving recent Bookings: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"spots":         counts,
				"waiting":       waiting,
				"waiting_count": len(waiting),
				"approved":      approved,
				"recent":        recent,
			})
		}).
		POST("/staff/bookings/:bookingId/approve", func(ctx *gin.Context) {
			var params types.BookingIDParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			staffId := ctx.GetUint("id")
			booking, err := utils.ApproveBooking(params.BookingID, staffId, staffRole(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/staff/bookings/:bookingId/reject", func(ctx *gin.Context) {
			var params types.BookingIDParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			staffId := ctx.GetUint("id")
			booking, err := utils.RejectBooking(params.BookingID, staffId, staffRole(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/staff/bookings/:bookingId/release", func(ctx *gin.Context) {
			var params types.BookingIDParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			staffId := ctx.GetUint("id")
			booking, err := utils.ReleaseSpot(params.BookingID, staffId, staffRole(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}
