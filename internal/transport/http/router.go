package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tripfriend/backend/internal/handlers"
	authmw "github.com/tripfriend/backend/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	MemberHandler  *handlers.MemberHandler
	RecruitHandler *handlers.RecruitHandler
	PlaceHandler   *handlers.PlaceHandler
	AuthMW         *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/join", d.MemberHandler.Join)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)
	v1.POST("/refresh", d.AuthHandler.Refresh)

	members := v1.Group("/members", d.AuthMW.RequireLogin)
	members.GET("/me", d.AuthHandler.Me)
	members.DELETE("/me", d.MemberHandler.Delete)
	members.PUT("/restore", d.MemberHandler.Restore)

	v1.GET("/recruits/search", d.RecruitHandler.Search)
	v1.GET("/recruits", d.RecruitHandler.List)
	v1.GET("/recruits/:id", d.RecruitHandler.Get)
	v1.POST("/recruits", d.RecruitHandler.Create, d.AuthMW.RequireLogin)
	v1.DELETE("/recruits/:id", d.RecruitHandler.Delete, d.AuthMW.RequireLogin)
	v1.POST("/recruits/:id/apply", d.RecruitHandler.Apply, d.AuthMW.RequireLogin)

	v1.GET("/places", d.PlaceHandler.List)
	v1.GET("/places/search", d.PlaceHandler.Search)

	admin := v1.Group("/admin", d.AuthMW.AdminOnly)
	admin.POST("/places", d.PlaceHandler.Create)
	admin.DELETE("/places/:id", d.PlaceHandler.Delete)
	admin.POST("/members/purge", d.MemberHandler.Purge)
}
