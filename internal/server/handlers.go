package server

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bhanmrinal/cf-project/internal/conversation"
	"github.com/bhanmrinal/cf-project/internal/resume"
)

type createConversationRequest struct {
	UserID string `json:"user_id" validate:"omitempty,max=128"`
}

type messageRequest struct {
	Message string `json:"message" validate:"required,max=20000"`
}

// uploadResumeRequest carries a resume either as parsed sections or as
// "## Title" text.
type uploadResumeRequest struct {
	ConversationID string           `json:"conversation_id" validate:"required"`
	Label          string           `json:"label" validate:"max=200"`
	Sections       []resume.Section `json:"sections" validate:"required_without=Text"`
	Text           string           `json:"text" validate:"required_without=Sections"`
}

type conversationResponse struct {
	Conversation conversation.Conversation `json:"conversation"`
	Turns        []conversation.Turn       `json:"turns"`
}

type historyResponse struct {
	ResumeID   string           `json:"resume_id"`
	CurrentSeq int              `json:"current_seq"`
	Versions   []resume.Version `json:"versions"`
}

type compareResponse struct {
	ResumeID string               `json:"resume_id"`
	From     int                  `json:"from"`
	To       int                  `json:"to"`
	Sections []resume.SectionDiff `json:"sections"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return writeJSON(c, http.StatusOK, fiber.Map{"status": "ok"})
}

func (s *Server) listAgents(c *fiber.Ctx) error {
	return writeJSON(c, http.StatusOK, fiber.Map{"agents": s.agents})
}

func (s *Server) createConversation(c *fiber.Ctx) error {
	var req createConversationRequest
	if len(c.Body()) > 0 {
		if err := s.bind(c, &req); err != nil {
			return s.writeError(c, err)
		}
	}

	conv, err := s.router.StartConversation(c.UserContext(), req.UserID)
	if err != nil {
		return s.writeError(c, err)
	}
	return writeJSON(c, http.StatusCreated, conv)
}

func (s *Server) getConversation(c *fiber.Ctx) error {
	id := c.Params("id")

	conv, err := s.store.Get(c.UserContext(), id)
	if err != nil {
		return s.writeError(c, err)
	}
	turns, err := s.store.RecentTurns(c.UserContext(), id, conversationView)
	if err != nil {
		return s.writeError(c, err)
	}
	if turns == nil {
		turns = []conversation.Turn{}
	}
	return writeJSON(c, http.StatusOK, conversationResponse{Conversation: conv, Turns: turns})
}

func (s *Server) postMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := s.bind(c, &req); err != nil {
		return s.writeError(c, err)
	}

	reply, err := s.router.HandleTurn(c.UserContext(), c.Params("id"), req.Message)
	if err != nil {
		return s.writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, reply)
}

func (s *Server) uploadResume(c *fiber.Ctx) error {
	var req uploadResumeRequest
	if err := s.bind(c, &req); err != nil {
		return s.writeError(c, err)
	}

	content := resume.Content{Sections: req.Sections}
	if len(req.Sections) == 0 {
		content = resume.FromText(req.Text)
	}
	for i := range content.Sections {
		content.Sections[i].Title = strings.TrimSpace(content.Sections[i].Title)
		if content.Sections[i].Type == "" {
			content.Sections[i].Type = resume.TypeForTitle(content.Sections[i].Title)
		}
	}
	if err := s.validate.Struct(content); err != nil {
		return s.writeError(c, err)
	}

	v, err := s.router.AttachResume(c.UserContext(), req.ConversationID, content, req.Label)
	if err != nil {
		return s.writeError(c, err)
	}
	return writeJSON(c, http.StatusCreated, v)
}

func (s *Server) listVersions(c *fiber.Ctx) error {
	id := c.Params("id")

	versions, current, err := s.versions.History(c.UserContext(), id)
	if err != nil {
		return s.writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, historyResponse{ResumeID: id, CurrentSeq: current, Versions: versions})
}

func (s *Server) currentVersion(c *fiber.Ctx) error {
	v, err := s.versions.Current(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, v)
}

func (s *Server) getVersion(c *fiber.Ctx) error {
	seq, err := seqParam(c, "seq")
	if err != nil {
		return s.writeError(c, err)
	}

	v, err := s.versions.Get(c.UserContext(), c.Params("id"), seq)
	if err != nil {
		return s.writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, v)
}

func (s *Server) revert(c *fiber.Ctx) error {
	seq, err := seqParam(c, "seq")
	if err != nil {
		return s.writeError(c, err)
	}

	v, err := s.versions.Revert(c.UserContext(), c.Params("id"), seq)
	if err != nil {
		return s.writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, v)
}

func (s *Server) compare(c *fiber.Ctx) error {
	a, err := seqParam(c, "a")
	if err != nil {
		return s.writeError(c, err)
	}
	b, err := seqParam(c, "b")
	if err != nil {
		return s.writeError(c, err)
	}

	id := c.Params("id")
	diffs, err := s.versions.Compare(c.UserContext(), id, a, b)
	if err != nil {
		return s.writeError(c, err)
	}
	return writeJSON(c, http.StatusOK, compareResponse{ResumeID: id, From: a, To: b, Sections: diffs})
}
