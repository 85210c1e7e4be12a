package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AasheeshLikePanner/spur/spur/controllers"
	"github.com/AasheeshLikePanner/spur/spur/types"
	"github.com/AasheeshLikePanner/spur/spur/utils/logging"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// statusForError maps controller sentinels onto HTTP statuses.
// Anything unrecognized is a 500 whose detail stays in the logs.
func statusForError(err error) int {
	switch {
	case errors.Is(err, controllers.ErrMissingUser),
		errors.Is(err, controllers.ErrMissingMessage),
		errors.Is(err, controllers.ErrMissingSession):
		return http.StatusBadRequest
	case errors.Is(err, controllers.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, controllers.ErrArchiveUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.ErrorLogger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func ChatRoutes(ctrl *controllers.ChatController) chi.Router {
	r := chi.NewRouter()

	// POST /chat : one chat turn (or named-conversation creation)
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
			return
		}
		resp, err := ctrl.Chat(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	// GET /chat/history?sessionId= : full transcript, oldest first
	r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
		history, err := ctrl.GetHistory(r.Context(), r.URL.Query().Get("sessionId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, history)
	})

	// GET /chat/sessions?userId= : the user's conversations, newest first
	r.Get("/sessions", func(w http.ResponseWriter, r *http.Request) {
		sessions, err := ctrl.ListSessions(r.Context(), r.URL.Query().Get("userId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessions)
	})

	// POST /chat/sessions/export : archive a transcript to object storage
	r.Post("/sessions/export", func(w http.ResponseWriter, r *http.Request) {
		var req types.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
			return
		}
		resp, err := ctrl.ExportTranscript(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	// GET /chat/memories?userId= : remembered facts, oldest first
	r.Get("/memories", func(w http.ResponseWriter, r *http.Request) {
		memories, err := ctrl.ListMemories(r.Context(), r.URL.Query().Get("userId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, memories)
	})

	// GET /chat/ws : streaming turn. First frame is the same JSON body
	// POST / takes; reply chunks come back as text frames.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var req types.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			writeWSError(ctx, conn, "invalid json")
			conn.Close(websocket.StatusPolicyViolation, "invalid json")
			return
		}

		ch, errCh := ctrl.ChatStream(ctx, req)
		for chunk := range ch {
			if err := conn.Write(ctx, websocket.MessageText, []byte(chunk)); err != nil {
				return
			}
		}
		// Setup failures close the chunk channel without a chunk and
		// leave the error here.
		if err := <-errCh; err != nil {
			status := statusForError(err)
			msg := err.Error()
			code := websocket.StatusPolicyViolation
			if status == http.StatusInternalServerError {
				logging.ErrorLogger.Error("stream request failed", zap.Error(err))
				msg = "internal server error"
				code = websocket.StatusInternalError
			}
			writeWSError(ctx, conn, msg)
			conn.Close(code, "stream error")
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	})

	return r
}

func writeWSError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return
	}
	conn.Write(ctx, websocket.MessageText, payload)
}
