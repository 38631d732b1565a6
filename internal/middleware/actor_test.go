package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupActorRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)

	var seenActor string
	router := gin.New()
	router.Use(ActorMiddleware())
	router.GET("/open", func(c *gin.Context) {
		seenActor = GetActorID(c)
		c.Status(http.StatusOK)
	})
	router.GET("/protected", ActorRequired(), func(c *gin.Context) {
		seenActor = GetActorID(c)
		c.Status(http.StatusOK)
	})
	return router, &seenActor
}

func TestActorMiddleware(t *testing.T) {
	actorID := uuid.New().String()

	testCases := []struct {
		name           string
		path           string
		header         string
		expectedStatus int
		expectedActor  string
	}{
		{
			name:           "Valid actor on protected route",
			path:           "/protected",
			header:         actorID,
			expectedStatus: http.StatusOK,
			expectedActor:  actorID,
		},
		{
			name:           "Missing actor on protected route",
			path:           "/protected",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed actor id on protected route",
			path:           "/protected",
			header:         "not-a-uuid",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Open route without actor",
			path:           "/open",
			header:         "",
			expectedStatus: http.StatusOK,
			expectedActor:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, seenActor := setupActorRouter()

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("X-Actor-ID", tc.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, tc.expectedStatus, recorder.Code)
			if tc.expectedStatus == http.StatusOK {
				assert.Equal(t, tc.expectedActor, *seenActor)
			}
		})
	}
}
