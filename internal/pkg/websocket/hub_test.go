package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

func TestValidTopic(t *testing.T) {
	assert.True(t, ValidTopic(IngestionTopic("abc")))
	assert.True(t, ValidTopic(JobTopic("j1")))
	assert.False(t, ValidTopic("job:"))
	assert.False(t, ValidTopic("chat:1"))
}

func TestHub_ListenersReceivePublishedMessages(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	listener := make(chan *Message, 1)
	hub.AddMessageListener(listener)

	hub.Publish(JobTopic("j1"), "backfill.progress", map[string]int{"scanned": 3})

	select {
	case msg := <-listener:
		assert.Equal(t, "job:j1", msg.Topic)
		assert.Equal(t, "backfill.progress", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("listener did not receive message")
	}
}

func TestHandler_StreamsTopicToSubscriber(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", NewHandler(hub, nil, zerolog.Nop()).HandleConnection)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?topic=" + IngestionTopic("s1")
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.GetClientsCount(IngestionTopic("s1")) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(IngestionTopic("s1"), "commit.progress", map[string]int{"processed": 1})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"processed":1`)
	assert.Contains(t, string(data), `"topic":"ingestion:s1"`)
}

func TestHandler_RejectsUnknownTopic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", NewHandler(NewHub(zerolog.Nop()), nil, zerolog.Nop()).HandleConnection)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws?topic=chat:1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_RejectsTopicsTheCallerDoesNotOwn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authorize := func(_ context.Context, adminID, topic string) error {
		if topic == IngestionTopic("s1") && adminID == "owner" {
			return nil
		}
		return apperrors.ErrSessionNotFound
	}
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set("adminID", c.GetHeader("X-Admin"))
	}, NewHandler(NewHub(zerolog.Nop()), authorize, zerolog.Nop()).HandleConnection)

	for _, admin := range []string{"", "intruder"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ws?topic="+IngestionTopic("s1"), nil)
		req.Header.Set("X-Admin", admin)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, admin)
	}
}
