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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/your-org/legal-assistant/internal/analyzer"
	"github.com/your-org/legal-assistant/internal/chat"
	"github.com/your-org/legal-assistant/internal/health"
	"github.com/your-org/legal-assistant/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAnalyzer implements DocumentAnalyzer and records the last request.
type fakeAnalyzer struct {
	lastText string
	lastName string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, documentText, _, documentName string) *analyzer.ContextualAnalysis {
	f.lastText = documentText
	f.lastName = documentName
	return &analyzer.ContextualAnalysis{
		Structure: &analyzer.DocumentStructure{
			Sections: []analyzer.DocumentSection{{Kind: analyzer.SectionIntroduction, Title: "INTRODUÇÃO"}},
		},
		ImprovementSuggestions: []string{"Adicione uma conclusão"},
	}
}

// fakeChat implements ChatSender.
type fakeChat struct {
	lastConversationID string
	reply              *chat.Reply
	err                error
}

func (f *fakeChat) Send(_ context.Context, conversationID, _ string) (*chat.Reply, error) {
	f.lastConversationID = conversationID
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newTestServer(t *testing.T, documents *fakeAnalyzer, chatSender *fakeChat) (*Server, *store.Store) {
	t.Helper()

	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := zaptest.NewLogger(t)
	healthManager := health.NewManager("legal-assistant", "test", logger)
	healthManager.AddCheckerFunc("database", func(ctx context.Context) health.CheckResult {
		if err := st.Ping(ctx); err != nil {
			return health.CheckResult{Status: health.StatusUnhealthy, Error: err.Error()}
		}
		return health.CheckResult{Status: health.StatusHealthy}
	})

	return New(documents, chatSender, st, healthManager, logger), st
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, &fakeChat{})

	w := performJSON(srv.Router(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response health.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, health.StatusHealthy, response.Status)
	assert.Contains(t, response.Dependencies, "database")
}

func TestAnalyzeDocumentEndpoint(t *testing.T) {
	documents := &fakeAnalyzer{}
	srv, _ := newTestServer(t, documents, &fakeChat{})

	w := performJSON(srv.Router(), http.MethodPost, "/documents/analyze", map[string]string{
		"document_text": "INTRODUÇÃO\n\nconteúdo do documento",
		"document_name": "petição.txt",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "petição.txt", documents.lastName)

	var analysis analyzer.ContextualAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	require.NotNil(t, analysis.Structure)
	assert.Len(t, analysis.Structure.Sections, 1)
	assert.Equal(t, []string{"Adicione uma conclusão"}, analysis.ImprovementSuggestions)
}

func TestAnalyzeDocumentMissingText(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, &fakeChat{})

	w := performJSON(srv.Router(), http.MethodPost, "/documents/analyze", map[string]string{
		"document_name": "vazio.txt",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "document_text is required", response.Error)
}

func TestChatEndpointCreatesConversation(t *testing.T) {
	chatSender := &fakeChat{reply: &chat.Reply{Content: "Resposta", State: chat.StateSuccess, Attempts: 1}}
	srv, st := newTestServer(t, &fakeAnalyzer{}, chatSender)

	w := performJSON(srv.Router(), http.MethodPost, "/chat", map[string]string{
		"message": "Qual o prazo para contestação?",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Reply)
	assert.Equal(t, "Resposta", response.Reply.Content)
	assert.NotEmpty(t, response.ConversationID)
	assert.Equal(t, response.ConversationID, chatSender.lastConversationID)

	rec, err := st.GetConversation(context.Background(), response.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Qual o prazo para contestação?", rec.Title)
}

func TestChatEndpointReusesConversation(t *testing.T) {
	chatSender := &fakeChat{reply: &chat.Reply{Content: "Resposta", State: chat.StateSuccess}}
	srv, st := newTestServer(t, &fakeAnalyzer{}, chatSender)

	id, err := st.CreateConversation(context.Background(), defaultOwnerID, "Existente")
	require.NoError(t, err)

	w := performJSON(srv.Router(), http.MethodPost, "/chat", map[string]string{
		"message":         "continuação",
		"conversation_id": id,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, chatSender.lastConversationID)
}

func TestChatEndpointMissingMessage(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, &fakeChat{})

	w := performJSON(srv.Router(), http.MethodPost, "/chat", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndCreateConversations(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, &fakeChat{})
	router := srv.Router()

	w := performJSON(router, http.MethodGet, "/conversations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = performJSON(router, http.MethodPost, "/conversations", map[string]string{"title": "Nova consulta"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, http.MethodGet, "/conversations", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var records []store.ConversationRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Nova consulta", records[0].Title)
}

func TestGetConversationWithMessages(t *testing.T) {
	srv, st := newTestServer(t, &fakeAnalyzer{}, &fakeChat{})
	ctx := context.Background()

	id, err := st.CreateConversation(ctx, defaultOwnerID, "Consulta")
	require.NoError(t, err)
	require.NoError(t, st.AppendMessage(ctx, id, "user", "Pergunta"))
	require.NoError(t, st.AppendMessage(ctx, id, "assistant", "Resposta"))

	w := performJSON(srv.Router(), http.MethodGet, "/conversations/"+id, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Conversation store.ConversationRecord `json:"conversation"`
		Messages     []store.MessageRecord    `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, id, response.Conversation.ID)
	require.Len(t, response.Messages, 2)
	assert.Equal(t, "user", response.Messages[0].Role)
}

func TestGetConversationNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, &fakeChat{})

	w := performJSON(srv.Router(), http.MethodGet, "/conversations/conv_missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
