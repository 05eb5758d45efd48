package http

import (
	"log"
	"net/http"

	"quiz-review-service/internal/app"
	"quiz-review-service/internal/domain"
	"github.com/gorilla/websocket"
)

// FeedHandler streams the review log over a websocket: a snapshot of the
// current document on connect, then every accepted record as it is upserted.
type FeedHandler struct {
	log      *app.ReviewLog
	upgrader websocket.Upgrader
}

func NewFeedHandler(reviewLog *app.ReviewLog) *FeedHandler {
	return &FeedHandler{
		log: reviewLog,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and streams review records until the client
// disconnects.
func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	snapshot, err := h.log.Reviews(r.Context())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[string]{Type: "error", Payload: err.Error()})
		return
	}
	if snapshot == nil {
		snapshot = []domain.ReviewResult{}
	}

	updates, cancel := h.log.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	readerDone := make(chan struct{})
	writerDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Read loop only to detect the client closing the connection.
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "snapshot", Payload: snapshot}

	for {
		select {
		case rec, ok := <-updates:
			if !ok {
				close(send)
				<-writerDone
				return
			}
			select {
			case send <- outboundMessage[any]{Type: "review", Payload: rec}:
			case <-readerDone:
				close(send)
				<-writerDone
				return
			}
		case <-readerDone:
			close(send)
			<-writerDone
			return
		case <-writerDone:
			return
		}
	}
}
