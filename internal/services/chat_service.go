package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/munero-platform/analytics-core-be/internal/core/analytics"
	"github.com/munero-platform/analytics-core-be/internal/core/llm"
	"github.com/munero-platform/analytics-core-be/internal/core/sqlgate"
	"github.com/munero-platform/analytics-core-be/internal/models"
	"github.com/munero-platform/analytics-core-be/internal/shared/database"
	"github.com/munero-platform/analytics-core-be/internal/shared/utils"
)

// ChatService runs the NL-to-SQL pipeline: generate, extract, inject
// filters, gate, execute, shape. Every stage failure degrades to a chat
// response with the error field set; the surface never 500s because a model
// wrote bad SQL.
type ChatService struct {
	db           *database.DB
	llm          *llm.Service
	chatRowLimit int
}

func NewChatService(db *database.DB, llmService *llm.Service, chatRowLimit int) *ChatService {
	if chatRowLimit <= 0 {
		chatRowLimit = sqlgate.DefaultChatCeiling
	}
	return &ChatService{db: db, llm: llmService, chatRowLimit: chatRowLimit}
}

// Ask answers a business question. The returned SQL keeps the filter
// placeholder so a later export replay can re-inject the caller's filters.
func (s *ChatService) Ask(ctx context.Context, req models.ChatRequest) *models.ChatResponse {
	cid := uuid.NewString()[:8]

	candidate, err := s.llm.GenerateSQL(ctx, req.Message, req.Filters)
	if err != nil {
		utils.LogError("SQL generation failed", err, map[string]interface{}{
			"cid":          cid,
			"question_len": len(req.Message),
		})
		return failedChat("I couldn't translate that question into a query. Try rephrasing it.", err)
	}

	injected, params, err := llm.InjectFilters(candidate, req.Filters)
	if err != nil {
		utils.LogError("Filter injection failed", err, map[string]interface{}{
			"cid":     cid,
			"sql_len": len(candidate),
		})
		return failedChat("The generated query didn't respect your filters, so I refused to run it.", err)
	}

	validated, err := sqlgate.Validate(
		sqlgate.CandidateQuery{SQL: injected, Label: "chat"},
		sqlgate.Options{Ceiling: s.chatRowLimit},
	)
	if err != nil {
		utils.LogError("Generated SQL rejected by safety gate", err, map[string]interface{}{
			"cid":     cid,
			"sql_len": len(injected),
		})
		return failedChat("The generated query was not a safe read-only statement, so I refused to run it.", err)
	}

	utils.LogDebug("Executing chat query", map[string]interface{}{
		"cid": cid,
		"sql": validated.SQL(),
	})

	rs, err := s.db.Query(ctx, validated.SQL(), params)
	if err != nil {
		utils.LogError("Chat query execution failed", err, map[string]interface{}{
			"cid": cid,
		})
		return failedChat("The query failed to execute. Try a simpler question.", err)
	}

	chart := analytics.InferChart(rs, req.Message)
	utils.LogInfo("Chat question answered", map[string]interface{}{
		"cid":   cid,
		"rows":  len(rs.Rows),
		"chart": chart.Type,
	})

	return &models.ChatResponse{
		Answer:  analytics.AnswerText(rs, req.Message, chart),
		SQL:     candidate,
		Columns: rs.Columns,
		Data:    rs.Rows,
		Chart:   &chart,
	}
}

func failedChat(answer string, err error) *models.ChatResponse {
	return &models.ChatResponse{
		Answer: answer,
		Error:  err.Error(),
	}
}
