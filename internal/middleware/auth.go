package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
	"github.com/storyforge/storyforge-backend/pkg/jwt"
)

const actorKey = "actor"

// JWTAuth verifies the bearer token and builds the request Actor. The token
// carries identity and role; supervision and organization scoping are
// hydrated from storage so core operations receive a complete Actor value.
func JWTAuth(jwtManager *jwt.Manager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifyHeader(c, jwtManager)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		actor, err := buildActor(claims, users)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// OptionalJWTAuth builds an Actor when a valid token is present and lets
// anonymous requests through
func OptionalJWTAuth(jwtManager *jwt.Manager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		claims, err := verifyHeader(c, jwtManager)
		if err != nil {
			c.Next()
			return
		}
		if actor, err := buildActor(claims, users); err == nil {
			c.Set(actorKey, actor)
		}
		c.Next()
	}
}

func verifyHeader(c *gin.Context, jwtManager *jwt.Manager) (*jwt.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, common.ErrUnauthorized
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, common.ErrInvalidToken
	}

	claims, err := jwtManager.VerifyToken(parts[1])
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, common.ErrExpiredToken
		}
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func buildActor(claims *jwt.Claims, users repository.UserRepository) (*domain.Actor, error) {
	user, err := users.FindByID(claims.UserID)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	orgIDs, err := users.OrgIDs(user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Actor{
		ID:           user.ID,
		Role:         user.Role,
		AssignedToID: user.AssignedToID,
		OrgIDs:       orgIDs,
	}, nil
}

func abortUnauthorized(c *gin.Context, err error) {
	common.ErrorResponse(c, http.StatusUnauthorized, err.Error(), nil)
	c.Abort()
}

// GetActor extracts the request Actor from context, nil for anonymous requests
func GetActor(c *gin.Context) *domain.Actor {
	value, exists := c.Get(actorKey)
	if !exists {
		return nil
	}
	if actor, ok := value.(*domain.Actor); ok {
		return actor
	}
	return nil
}
