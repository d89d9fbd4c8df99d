package routes

import (
	"errors"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

// ListAgents is public read-only.
func ListAgents(ctx iris.Context) {
	var agents []models.Agent
	if err := storage.DB.Order("name ASC").Find(&agents).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(agents)
}

func GetAgent(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid agent id", ctx)
		return
	}

	var agent models.Agent
	if err := storage.DB.First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateNotFound(ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(agent)
}

type AgentInput struct {
	Name   string `json:"name" validate:"required"`
	Phone  string `json:"phone"`
	Mobile string `json:"mobile"`
	Email  string `json:"email" validate:"required,email"`
	Skype  string `json:"skype"`
}

// CreateAgent is admin-only.
func CreateAgent(ctx iris.Context) {
	var input AgentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	agent := models.Agent{
		Name:   input.Name,
		Phone:  input.Phone,
		Mobile: input.Mobile,
		Email:  input.Email,
		Skype:  input.Skype,
	}
	if err := storage.DB.Create(&agent).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(agent)
}
