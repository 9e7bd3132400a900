package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"parkres/src/lib"
	"parkres/src/types"
	"parkres/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		// Serves the QR image for an approved booking's ticket. The
		// rendered image is cached so repeated downloads skip the
		// encoder.
		GET("/tickets/:bookingId", func(ctx *gin.Context) {
			var params types.BookingIDParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role, _ := ctx.Get("role")
			staff, _ := role.(types.Role)
			ticket, err := utils.GetTicketForBooking(params.BookingID, userId, staff)
			if err != nil {
				respondError(ctx, err)
				return
			}

			cacheKey := fmt.Sprintf("ticketcode:%s", ticket.TicketNumber)
			rd := lib.GetRedisClient()
			if rd != nil {
				content, err := rd.Get(context.Background(), cacheKey).Result()
				if err != nil {
					if errors.Is(redis.Nil, err) {
						log.Printf("No value for key: %s\n", cacheKey)
					} else {
						log.Printf("Error reading from cache: %s\n", err.Error())
					}
				}
				if content != "" {
					img, err := base64.StdEncoding.DecodeString(content)
					if err == nil {
						ctx.Data(http.StatusOK, "image/jpeg", img)
						return
					}
					log.Printf("Discarding unreadable cache entry %s: %s\n", cacheKey, err.Error())
				}
			}

			img, err := lib.QREncode(ticket.QRCode)
			if err != nil {
				log.Printf("Error encoding qrcode for %s: %s\n", ticket.TicketNumber, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if rd != nil {
				encoded := base64.StdEncoding.EncodeToString(img)
				if err := rd.SetEx(context.Background(), cacheKey, encoded, 2*time.Hour).Err(); err != nil {
					log.Printf("Error caching value [%s]: %s\n", cacheKey, err.Error())
				}
			}
			ctx.Data(http.StatusOK, "image/jpeg", img)
		})
	return g
}
