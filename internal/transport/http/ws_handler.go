package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"timed-exam-service/internal/app"
	"timed-exam-service/internal/domain"
)

// WSHandler carries a live session over a websocket: intents in, session events out.
type WSHandler struct {
	service  *app.ExamService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.ExamService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	OptionID string `json:"optionId"`
}

type markPayload struct {
	QuestionID int `json:"questionId"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type visibilityPayload struct {
	State domain.Visibility `json:"state"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type warningPayload struct {
	Message string             `json:"message"`
	View    domain.SessionView `json:"view"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into a running session.
// Dropping the connection does not end the session; its timer keeps running.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}
	session, err := h.service.Session(sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("session_id", sessionID).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					// Session released: unblock the reader.
					_ = conn.SetReadDeadline(time.Now())
					return
				}
				select {
				case send <- toOutbound(event):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(session, inbound); err != nil {
			select {
			case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(session *app.Session, inbound inboundMessage) error {
	switch inbound.Type {
	case "select":
		var p selectPayload
		if err := decodePayload(inbound.Payload, &p); err != nil {
			return err
		}
		return session.SelectOption(p.OptionID)
	case "mark":
		var p markPayload
		if err := decodePayload(inbound.Payload, &p); err != nil {
			return err
		}
		return session.ToggleMark(p.QuestionID)
	case "goto":
		var p gotoPayload
		if err := decodePayload(inbound.Payload, &p); err != nil {
			return err
		}
		session.GoTo(p.Index)
	case "next":
		session.Next()
	case "previous":
		session.Previous()
	case "requestFinish":
		return session.RequestFinish()
	case "cancelFinish":
		return session.CancelFinish()
	case "finish":
		_, err := h.service.Finish(session.ID())
		return err
	case "visibility":
		var p visibilityPayload
		if err := decodePayload(inbound.Payload, &p); err != nil {
			return err
		}
		if p.State != domain.VisibilityHidden && p.State != domain.VisibilityVisible {
			return errUnsupportedVisibility
		}
		session.Visibility().Publish(p.State)
	default:
		return errUnsupportedMessage
	}
	return nil
}

func toOutbound(event domain.SessionEvent) outboundMessage[any] {
	if event.Type == domain.EventWarning {
		return outboundMessage[any]{Type: event.Type, Payload: warningPayload{Message: event.Message, View: event.View}}
	}
	return outboundMessage[any]{Type: event.Type, Payload: event.View}
}

func decodePayload(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errInvalidPayload
	}
	return nil
}
