package http

import (
	"encoding/json"
	"log"
	"net/http"

	"dokkai-practice-service/internal/app"
	"dokkai-practice-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.PracticeService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.PracticeService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	Answers map[string]string `json:"answers"`
}

type nextPayload struct {
	PassageID string `json:"passageId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// choiceView / questionView / passageView strip the answer key and
// explanations from what the client sees before grading.
type choiceView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type questionView struct {
	ID           string       `json:"id"`
	QuestionText string       `json:"questionText"`
	Choices      []choiceView `json:"choices"`
}

type passageView struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	Category      string                  `json:"category"`
	Difficulty    int                     `json:"difficulty"`
	EstimatedTime int                     `json:"estimatedTime"`
	Text          string                  `json:"passage"`
	Vocabulary    []domain.VocabularyItem `json:"vocabulary,omitempty"`
	Questions     []questionView          `json:"questions"`
}

func viewOf(p domain.Passage) passageView {
	questions := make([]questionView, 0, len(p.Questions))
	for _, q := range p.Questions {
		choices := make([]choiceView, 0, len(q.Choices))
		for _, c := range q.Choices {
			choices = append(choices, choiceView{ID: c.ID, Text: c.Text})
		}
		questions = append(questions, questionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Choices:      choices,
		})
	}
	return passageView{
		ID:            p.ID,
		Title:         p.Title,
		Category:      p.Category,
		Difficulty:    p.Difficulty,
		EstimatedTime: p.EstimatedTime,
		Text:          p.Text,
		Vocabulary:    p.Vocabulary,
		Questions:     questions,
	}
}

// ServeWS upgrades HTTP requests to websockets and drives one learner's
// practice flow: load a passage, accept one submission, reveal
// explanations, move to the next passage. The loop is single-goroutine, so
// reads and writes never race on the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	passageID := r.URL.Query().Get("passageId")
	if passageID == "" {
		http.Error(w, "missing passageId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.StartSession(r.Context(), passageID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	_ = conn.WriteJSON(outboundMessage[passageView]{Type: "loaded", Payload: viewOf(session.Passage())})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, "invalid submit payload")
				continue
			}
			outcome, err := session.Submit(r.Context(), domain.Submission(payload.Answers))
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[app.SubmitOutcome]{Type: "result", Payload: outcome})

		case "explanations":
			explanations, err := session.Explanations()
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[[]app.Explanation]{Type: "explanations", Payload: explanations})

		case "stats":
			stats, err := h.service.Stats(r.Context())
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[domain.Stats]{Type: "stats", Payload: stats})

		case "next":
			var payload nextPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					h.writeError(conn, "invalid next payload")
					continue
				}
			}
			nextID := payload.PassageID
			if nextID == "" {
				nextID, err = h.nextPassageID(r, session.Passage().ID)
				if err != nil {
					h.writeError(conn, err.Error())
					continue
				}
			}
			// The previous attempt is discarded; only the ledger carries over.
			next, err := h.service.StartSession(r.Context(), nextID)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			session = next
			_ = conn.WriteJSON(outboundMessage[passageView]{Type: "loaded", Payload: viewOf(session.Passage())})

		case "reset":
			if err := h.service.ResetProgress(r.Context()); err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			stats, _ := h.service.Stats(r.Context())
			_ = conn.WriteJSON(outboundMessage[domain.Stats]{Type: "stats", Payload: stats})

		default:
			h.writeError(conn, "unsupported message type")
		}
	}
}

// nextPassageID picks the catalog entry after the current one, wrapping
// around at the end.
func (h *WSHandler) nextPassageID(r *http.Request, currentID string) (string, error) {
	index, err := h.service.ContentIndex(r.Context())
	if err != nil {
		return "", err
	}
	if len(index.Passages) == 0 {
		return "", domain.ErrPassageNotFound
	}
	for i, entry := range index.Passages {
		if entry.ID == currentID {
			return index.Passages[(i+1)%len(index.Passages)].ID, nil
		}
	}
	return index.Passages[0].ID, nil
}

func (h *WSHandler) writeError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}
