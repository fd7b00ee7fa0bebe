package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/RigelNana/studygen/config"
)

// 送给模型的材料内容上限（字符数），与外部 API 限制对齐
const maxPromptChars = 4000

type GeneratedFlashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type GeneratedQuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type ContentGenerator interface {
	// Generate 并发请求闪卡和测验题两路生成，两路都成功才算成功。
	// 响应 JSON 不合法时该路退化为空列表而不是整体失败。
	Generate(ctx context.Context, text string) ([]GeneratedFlashcard, []GeneratedQuizQuestion, error)
}

type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger *logrus.Logger
}

func NewOpenAIGenerator(cfg config.OpenAIConfig, logger *logrus.Logger) *OpenAIGenerator {
	var client *openai.Client
	if cfg.BaseURL != "" {
		// 自定义 baseURL，用于代理或测试桩
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = cfg.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(cfg.APIKey)
	}

	return &OpenAIGenerator{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, text string) ([]GeneratedFlashcard, []GeneratedQuizQuestion, error) {
	text = truncateRunes(text, maxPromptChars)

	var (
		wg        sync.WaitGroup
		cards     []GeneratedFlashcard
		questions []GeneratedQuizQuestion
		cardsErr  error
		quizErr   error
	)

	// 两路请求先全部发出再等待
	wg.Add(2)
	go func() {
		defer wg.Done()
		cards, cardsErr = g.generateFlashcards(ctx, text)
	}()
	go func() {
		defer wg.Done()
		questions, quizErr = g.generateQuizQuestions(ctx, text)
	}()
	wg.Wait()

	if cardsErr != nil {
		return nil, nil, fmt.Errorf("failed to generate flashcards: %w", cardsErr)
	}
	if quizErr != nil {
		return nil, nil, fmt.Errorf("failed to generate quiz questions: %w", quizErr)
	}

	return cards, questions, nil
}

func (g *OpenAIGenerator) generateFlashcards(ctx context.Context, text string) ([]GeneratedFlashcard, error) {
	content, err := g.chatJSON(ctx,
		`You are an expert educator. Create flashcards from the provided text. Generate 5-10 high-quality flashcards with clear questions and concise answers. Return valid JSON in this format: {"flashcards": [{"question": "...", "answer": "..."}]}`,
		fmt.Sprintf("Create flashcards from this text:\n\n%s", text))
	if err != nil {
		return nil, err
	}

	var result struct {
		Flashcards []GeneratedFlashcard `json:"flashcards"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &result); err != nil {
		g.logger.Warnf("malformed flashcard response, returning empty set: %v", err)
		return []GeneratedFlashcard{}, nil
	}
	if result.Flashcards == nil {
		return []GeneratedFlashcard{}, nil
	}
	return result.Flashcards, nil
}

func (g *OpenAIGenerator) generateQuizQuestions(ctx context.Context, text string) ([]GeneratedQuizQuestion, error) {
	content, err := g.chatJSON(ctx,
		`You are an expert educator. Create multiple choice quiz questions from the provided text. Generate 5-10 high-quality questions with 4 options each. Return valid JSON in this format: {"questions": [{"question": "...", "options": ["A", "B", "C", "D"], "correctAnswer": 0}]}`,
		fmt.Sprintf("Create quiz questions from this text:\n\n%s", text))
	if err != nil {
		return nil, err
	}

	var result struct {
		Questions []GeneratedQuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &result); err != nil {
		g.logger.Warnf("malformed quiz response, returning empty set: %v", err)
		return []GeneratedQuizQuestion{}, nil
	}

	// 丢弃不合法的题目：至少两个选项且答案下标在范围内
	valid := make([]GeneratedQuizQuestion, 0, len(result.Questions))
	for _, q := range result.Questions {
		if len(q.Options) < 2 {
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			continue
		}
		valid = append(valid, q)
	}
	return valid, nil
}

// chatJSON 以 JSON 模式调用外部文本生成服务
func (g *OpenAIGenerator) chatJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// extractJSONObject 截取首个 { 到最后一个 } 之间的内容，容忍模型在 JSON 外附带文字
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return content
	}
	return content[start : end+1]
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
