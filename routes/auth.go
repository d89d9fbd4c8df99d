package routes

import (
	"errors"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an admin-console user and returns a token pair.
func Login(ctx iris.Context) {
	var input LoginInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	err := storage.DB.Where("email = ?", input.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "invalid credentials", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	if !utils.CheckPassword(user.Password, input.Password) {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "invalid credentials", ctx)
		return
	}

	tokenPair, err := utils.CreateTokenPair(&user)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"user":   user,
		"tokens": tokenPair,
	})
}
