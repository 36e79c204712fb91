package tabular

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/store"
)

const module = "TABULAR"

const maxPromptRows = 200

// Agent answers questions against a single pre-selected spreadsheet
type Agent struct {
	llmProvider llm.LLMProvider
	baseDir     string
	logger      logger.ILogger
}

func NewAgent(llmProvider llm.LLMProvider, baseDir string, logger logger.ILogger) *Agent {
	return &Agent{
		llmProvider: llmProvider,
		baseDir:     baseDir,
		logger:      logger,
	}
}

// Answer loads the sheet and asks the model to answer from the table only
func (a *Agent) Answer(ctx context.Context, sheet store.Spreadsheet, question string) (string, error) {
	table, err := LoadCSV(a.resolve(sheet.StoragePath))
	if err != nil {
		a.logger.Warn(module, "Failed to load spreadsheet", map[string]interface{}{
			"sheet": sheet.Title,
			"error": err.Error(),
		})
		return "", err
	}

	prompt := fmt.Sprintf("<table title=%q rows=\"%d\">\n%s</table>\n\n<question>%s</question>",
		sheet.Title, len(table.Rows), table.Render(maxPromptRows), question)

	answer, err := a.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: constant.TabularAnswerSystemPrompt},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(0))
	if err != nil {
		a.logger.Error(module, "Tabular answer failed", map[string]interface{}{
			"sheet": sheet.Title,
			"error": err.Error(),
		})
		return "", err
	}

	a.logger.Info(module, "Tabular answer generated", map[string]interface{}{
		"sheet": sheet.Title,
		"rows":  len(table.Rows),
	})
	return strings.TrimSpace(answer), nil
}

func (a *Agent) resolve(path string) string {
	if filepath.IsAbs(path) || a.baseDir == "" {
		return path
	}
	return filepath.Join(a.baseDir, path)
}
