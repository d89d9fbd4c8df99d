package utils

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/storage"
)

var bgContext = context.Background()

// AccessToken is the claims payload for admin-console access tokens.
type AccessToken struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

// CreateTokenPair signs an access/refresh token pair for a user and records
// the refresh token in Redis so it can be revoked on use.
func CreateTokenPair(user *models.User) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 24*time.Hour)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), 30*24*time.Hour)

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: user.ID, Role: user.Role})
	if err != nil {
		return nil, err
	}

	refreshClaims := jwt.Claims{Subject: strconv.FormatUint(uint64(user.ID), 10)}
	refreshToken, err := refreshTokenSigner.Sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	if storage.Redis != nil {
		storage.Redis.Set(bgContext, string(refreshToken), "true", 30*24*time.Hour+5*time.Minute)
	}

	return &tokenPair, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair. The old
// refresh token is invalidated.
func RefreshToken(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	if storage.Redis != nil {
		validToken, tokenErr := storage.Redis.Get(bgContext, tokenStr).Result()
		if tokenErr != nil || validToken != "true" {
			ctx.StatusCode(iris.StatusForbidden)
			return
		}
		storage.Redis.Del(bgContext, tokenStr)
	}

	userID, parseErr := strconv.ParseUint(token.StandardClaims.Subject, 10, 32)
	if parseErr != nil {
		CreateInternalServerError(ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, uint(userID)).Error; err != nil {
		CreateNotFound(ctx)
		return
	}

	tokenPair, err := CreateTokenPair(&user)
	if err != nil {
		CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(tokenPair)
}
