// Copyright 2025 Legal Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server provides the HTTP surface of the legal assistant: chat,
// document analysis and conversation endpoints consumed by the browser UI.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/legal-assistant/internal/analyzer"
	"github.com/your-org/legal-assistant/internal/cache"
	"github.com/your-org/legal-assistant/internal/chat"
	"github.com/your-org/legal-assistant/internal/config"
	"github.com/your-org/legal-assistant/internal/docservice"
	"github.com/your-org/legal-assistant/internal/health"
	"github.com/your-org/legal-assistant/internal/llm"
	"github.com/your-org/legal-assistant/internal/resilience"
	"github.com/your-org/legal-assistant/internal/store"
	"go.uber.org/zap"
)

// defaultOwnerID stands in for the authenticated user id; authentication is
// handled outside this service.
const defaultOwnerID = "demo-user"

// DocumentAnalyzer is the document analysis dependency of the server.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, documentText, documentID, documentName string) *analyzer.ContextualAnalysis
}

// ChatSender is the chat dependency of the server.
type ChatSender interface {
	Send(ctx context.Context, conversationID, message string) (*chat.Reply, error)
}

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id"`
}

// ChatResponse represents a chat response
type ChatResponse struct {
	Reply          *chat.Reply `json:"reply,omitempty"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// AnalyzeRequest represents an incoming document analysis request
type AnalyzeRequest struct {
	DocumentText string `json:"document_text" binding:"required"`
	DocumentName string `json:"document_name"`
	DocumentID   string `json:"document_id"`
}

// ErrorResponse is the error shape returned by every endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server wires the HTTP handlers to their dependencies.
type Server struct {
	documents     DocumentAnalyzer
	chat          ChatSender
	conversations *store.Store
	healthManager *health.Manager
	logger        *zap.Logger
}

// New creates a server from explicit dependencies.
func New(documents DocumentAnalyzer, chatSender ChatSender, conversations *store.Store, healthManager *health.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		documents:     documents,
		chat:          chatSender,
		conversations: conversations,
		healthManager: healthManager,
		logger:        logger,
	}
}

// Build assembles the full service from configuration: store, cache, LLM
// client, orchestrators and server. The returned cleanup releases the cache
// and database.
func Build(cfg *config.Config, logger *zap.Logger) (*Server, func(), error) {
	st, err := store.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	responseCache := cache.New(
		time.Duration(cfg.Cache.SweepIntervalMinutes)*time.Minute, logger)

	var completion *llm.Client
	if cfg.OpenAI.APIKey != "" {
		completion, err = llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Endpoint, logger)
		if err != nil {
			responseCache.Close()
			_ = st.Close()
			return nil, nil, err
		}
	}

	docConfig := docservice.Config{
		MaxChunkSize:    cfg.Analysis.MaxChunkSize,
		AnalysisCeiling: cfg.Analysis.AnalysisCeiling,
		CacheTTL:        time.Duration(cfg.Cache.AssistantTTLMinutes) * time.Minute,
	}

	var docCompletion docservice.CompletionService
	var chatCompletion chat.CompletionService
	if completion != nil {
		docCompletion = completion
		chatCompletion = completion
	}

	documents := docservice.NewService(docConfig, responseCache, docCompletion, st, logger)

	retryCfg := resilience.RetryConfig{
		MaxAttempts:     cfg.Chat.MaxAttempts,
		BackoffStep:     time.Duration(cfg.Chat.BackoffStepSeconds) * time.Second,
		AttemptTimeout:  time.Duration(cfg.Chat.AttemptTimeoutSeconds) * time.Second,
		OverallDeadline: time.Duration(cfg.Chat.OverallDeadlineSeconds) * time.Second,
	}
	chatSender := chat.NewOrchestrator(chatCompletion, st, retryCfg, logger)

	healthManager := health.NewManager("legal-assistant", "1.0.0", logger)
	healthManager.AddCheckerFunc("database", func(ctx context.Context) health.CheckResult {
		if err := st.Ping(ctx); err != nil {
			return health.CheckResult{Status: health.StatusUnhealthy, Error: err.Error()}
		}
		return health.CheckResult{Status: health.StatusHealthy}
	})
	healthManager.AddCheckerFunc("cache", func(_ context.Context) health.CheckResult {
		if responseCache == nil {
			return health.CheckResult{Status: health.StatusDegraded, Error: "cache not configured"}
		}
		return health.CheckResult{Status: health.StatusHealthy}
	})
	healthManager.AddCheckerFunc("completion", func(ctx context.Context) health.CheckResult {
		if completion == nil {
			return health.CheckResult{Status: health.StatusDegraded, Error: "completion service not configured"}
		}
		return health.CheckResult{Status: health.StatusHealthy}
	})

	server := New(documents, chatSender, st, healthManager, logger)
	cleanup := func() {
		responseCache.Close()
		_ = st.Close()
	}

	return server, cleanup, nil
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)
	router.POST("/chat", s.handleChat)
	router.POST("/documents/analyze", s.handleAnalyzeDocument)
	router.GET("/conversations", s.handleListConversations)
	router.POST("/conversations", s.handleCreateConversation)
	router.GET("/conversations/:id", s.handleGetConversation)

	return router
}

// Run starts the HTTP server on the given port.
func (s *Server) Run(port string) error {
	s.logger.Info("Starting legal assistant server", zap.String("port", port))
	return s.Router().Run(":" + port)
}

func (s *Server) handleHealth(c *gin.Context) {
	s.healthManager.HTTPHandler().ServeHTTP(c.Writer, c.Request)
}

// handleChat processes a chat message. A degraded reply (retries exhausted)
// is still a 200: the client renders the classified message.
func (s *Server) handleChat(c *gin.Context) {
	ctx := c.Request.Context()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message is required"})
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		id, err := s.conversations.CreateConversation(ctx, defaultOwnerID, conversationTitle(req.Message))
		if err != nil {
			s.logger.Error("Failed to create conversation", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "failed to create conversation",
				Details: err.Error(),
			})
			return
		}
		conversationID = id
	}

	reply, err := s.chat.Send(ctx, conversationID, req.Message)
	if err != nil {
		s.writeError(c, err, "failed to process chat message")
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Reply: reply, ConversationID: conversationID})
}

// handleAnalyzeDocument runs the contextual analysis pipeline. The pipeline
// itself is fail-soft, so any error reaching this handler is a request
// problem, not an analysis problem.
func (s *Server) handleAnalyzeDocument(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "document_text is required"})
		return
	}

	analysis := s.documents.Analyze(c.Request.Context(), req.DocumentText, req.DocumentID, req.DocumentName)
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) handleListConversations(c *gin.Context) {
	records, err := s.conversations.ListConversations(c.Request.Context(), defaultOwnerID)
	if err != nil {
		s.writeError(c, err, "failed to list conversations")
		return
	}
	if records == nil {
		records = []store.ConversationRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleCreateConversation(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Title == "" {
		req.Title = "Nova conversa"
	}

	id, err := s.conversations.CreateConversation(c.Request.Context(), defaultOwnerID, req.Title)
	if err != nil {
		s.writeError(c, err, "failed to create conversation")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "title": req.Title})
}

func (s *Server) handleGetConversation(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	record, err := s.conversations.GetConversation(ctx, id)
	if err != nil {
		s.writeError(c, err, "failed to load conversation")
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "conversation not found"})
		return
	}

	messages, err := s.conversations.LoadMessages(ctx, id)
	if err != nil {
		s.writeError(c, err, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []store.MessageRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": record,
		"messages":     messages,
	})
}

// writeError maps a ServiceError to its status code and wraps everything
// else as a 500.
func (s *Server) writeError(c *gin.Context, err error, fallback string) {
	var serviceErr *resilience.ServiceError
	if errors.As(err, &serviceErr) {
		s.logger.Warn("Request failed",
			zap.String("code", string(serviceErr.Code)),
			zap.Error(err))
		c.JSON(serviceErr.StatusCode, ErrorResponse{Error: serviceErr.Message})
		return
	}

	s.logger.Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback, Details: err.Error()})
}

// conversationTitle derives a conversation title from the first message.
func conversationTitle(message string) string {
	const maxTitleLength = 48
	title := message
	if len(title) > maxTitleLength {
		title = analyzer.Truncate(title, maxTitleLength)
	}
	return title
}
