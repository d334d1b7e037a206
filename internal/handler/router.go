package handler

import (
	"net/http"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/middleware"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Users  *UserHandler
	Admin  *AdminHandler
	Auth   *AuthHandler
	Images *ImageHandler
}

// NewRouter mounts every route. Trailing slashes are part of the public paths.
func NewRouter(h Handlers, parser middleware.TokenParser, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/register/", h.Users.Register)
	router.POST("/token/", h.Auth.Token)
	router.POST("/token/refresh/", h.Auth.Refresh)
	router.POST("/generate_image/", h.Images.GenerateImage)

	authed := router.Group("/", middleware.AuthMiddleware(parser))
	{
		authed.GET("/me/", h.Users.Me)
		authed.PATCH("/update_profile/", h.Users.UpdateProfile)
		authed.POST("/fetchdata/", h.Users.FetchData)
		authed.POST("/edit_details/", h.Users.EditDetails)
	}

	admin := router.Group("/", middleware.AuthMiddleware(parser), middleware.RequireRole(models.RoleAdministrator))
	{
		admin.POST("/users_data/", h.Admin.UsersData)
		admin.PUT("/edit_user/:id/", h.Admin.EditUser)
		admin.DELETE("/delete_user/:id/", h.Admin.DeleteUser)
		admin.POST("/search/", h.Admin.Search)
	}

	return router
}
