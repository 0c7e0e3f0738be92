package problemgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/llm"
	"github.com/abhisek/worksheet/internal/worksheet"
)

func newTestService(p llm.Provider) (*Service, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(p, DefaultConfig(), WithLogger(logger), WithRand(rand.NewPCG(1, 2))), &buf
}

func mockJSON(s string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(s)}
}

func TestGenerateMath_AI(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"problems":[
		{"left":12,"right":34,"op":"+","answer":46},
		{"left":50,"right":25,"op":"-","answer":25},
		{"left":11,"right":11,"op":"+","answer":22}
	]}`))
	svc, _ := newTestService(mock)

	sheet, err := svc.GenerateMath(context.Background(), mathSettings)
	require.NoError(t, err)

	assert.Equal(t, worksheet.SourceAI, sheet.Source)
	require.Len(t, sheet.MathProblems, 2, "extra problems are trimmed")
	assert.Equal(t, 1, sheet.MathProblems[0].ID)
	assert.Equal(t, 2, sheet.MathProblems[1].ID)
	assert.Equal(t, arith.Minus, sheet.MathProblems[1].Op)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, MathSchema, req.Schema)
	assert.Equal(t, DefaultConfig().maxTokens(2), req.MaxTokens)
	assert.Contains(t, req.Messages[0].Content, "2")
}

func TestGenerateMath_NoProviderIsLocal(t *testing.T) {
	svc, _ := newTestService(nil)
	assert.False(t, svc.HasProvider())

	sheet, err := svc.GenerateMath(context.Background(), mathSettings)
	require.NoError(t, err)
	assert.Equal(t, worksheet.SourceLocal, sheet.Source)
	assert.Len(t, sheet.MathProblems, 2)
}

func TestGenerateMath_FallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name      string
		responses []llm.MockResponse
		calls     int
	}{
		{"provider error", []llm.MockResponse{{Err: &llm.ErrProviderUnavailable{}}}, 1},
		{"bad json", []llm.MockResponse{mockJSON(`not json`)}, 1},
		{
			"wrong answers on every attempt",
			[]llm.MockResponse{
				mockJSON(`{"problems":[{"left":12,"right":34,"op":"+","answer":1},{"left":12,"right":34,"op":"+","answer":46}]}`),
				mockJSON(`{"problems":[{"left":12,"right":34,"op":"+","answer":46}]}`),
			},
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(tt.responses...)
			svc, logs := newTestService(mock)

			sheet, err := svc.GenerateMath(context.Background(), mathSettings)
			require.NoError(t, err)
			assert.Equal(t, worksheet.SourceLocal, sheet.Source)
			assert.Len(t, sheet.MathProblems, mathSettings.Count)
			for _, p := range sheet.MathProblems {
				assert.NoError(t, arith.Check(p, mathSettings.Arith()))
			}
			assert.Equal(t, tt.calls, mock.CallCount())
			assert.Contains(t, logs.String(), "using local generator")
		})
	}
}

func TestGenerateMath_RetriesThenSucceeds(t *testing.T) {
	mock := llm.NewMockProvider(
		mockJSON(`{"problems":[{"left":12,"right":34,"op":"+","answer":46}]}`),
		mockJSON(`{"problems":[{"left":12,"right":34,"op":"+","answer":46},{"left":40,"right":30,"op":"-","answer":10}]}`),
	)
	svc, _ := newTestService(mock)

	sheet, err := svc.GenerateMath(context.Background(), mathSettings)
	require.NoError(t, err)
	assert.Equal(t, worksheet.SourceAI, sheet.Source)
	assert.Equal(t, 2, mock.CallCount())
}

func TestGenerateMath_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := llm.NewMockProvider(llm.MockResponse{Err: context.Canceled})
	svc, _ := newTestService(mock)

	_, err := svc.GenerateMath(ctx, mathSettings)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateMath_InvalidSettings(t *testing.T) {
	mock := llm.NewMockProvider()
	svc, _ := newTestService(mock)

	_, err := svc.GenerateMath(context.Background(), worksheet.MathSettings{Count: 0, Digits: arith.TwoTwo, Operation: arith.Addition, Format: worksheet.Horizontal})
	assert.ErrorIs(t, err, worksheet.ErrInvalidConfig)
	assert.Zero(t, mock.CallCount())
}

func TestGenerateHanja(t *testing.T) {
	settings := worksheet.HanjaSettings{Count: 2, Grade: worksheet.Grade8, Type: worksheet.HanjaMultipleChoice}
	mock := llm.NewMockProvider(mockJSON(`{"problems":[
		{"character":"山","meaning":"메","reading":"산","options":["메 산","물 수","불 화","나무 목"],"answer":"메 산"},
		{"character":"水","meaning":"물","reading":"수","options":["메 산","물 수","불 화","나무 목"],"answer":"물 수"}
	]}`))
	svc, _ := newTestService(mock)

	sheet, err := svc.GenerateHanja(context.Background(), settings)
	require.NoError(t, err)
	assert.Equal(t, worksheet.Hanja, sheet.Subject)
	assert.Equal(t, worksheet.SourceAI, sheet.Source)
	require.Len(t, sheet.HanjaProblems, 2)
	for i, p := range sheet.HanjaProblems {
		assert.Equal(t, i+1, p.ID)
		assert.ElementsMatch(t, []string{"메 산", "물 수", "불 화", "나무 목"}, p.Options)
		assert.Contains(t, p.Options, p.Answer)
	}
	assert.Equal(t, HanjaSchema, mock.Calls[0].Schema)
}

func TestGenerateHanja_ErrorsPropagate(t *testing.T) {
	settings := worksheet.HanjaSettings{Count: 1, Grade: worksheet.Grade7, Type: worksheet.HanjaShortAnswer}

	svc, _ := newTestService(nil)
	_, err := svc.GenerateHanja(context.Background(), settings)
	assert.ErrorIs(t, err, ErrNoProvider)

	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	svc, _ = newTestService(mock)
	_, err = svc.GenerateHanja(context.Background(), settings)
	var unavailable *llm.ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavailable))

	mock = llm.NewMockProvider(
		mockJSON(`{"problems":[{"character":"火","meaning":"","reading":"화","options":[],"answer":"불 화"}]}`),
		mockJSON(`{"problems":[{"character":"火","meaning":"","reading":"화","options":[],"answer":"불 화"}]}`),
	)
	svc, _ = newTestService(mock)
	_, err = svc.GenerateHanja(context.Background(), settings)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "structural", verr.Validator)
	assert.Equal(t, 2, mock.CallCount())
}

func TestGenerateEnglish(t *testing.T) {
	settings := worksheet.EnglishSettings{Count: 1, Grade: worksheet.EnglishGrade3, Type: worksheet.EnglishTranslation}
	mock := llm.NewMockProvider(mockJSON(`{"problems":[
		{"question":"나는 학생입니다.","options":["x"],"answer":"I am a student.","hint":"I am ..."}
	]}`))
	svc, _ := newTestService(mock)

	sheet, err := svc.GenerateEnglish(context.Background(), settings)
	require.NoError(t, err)
	require.Len(t, sheet.EnglishProblems, 1)
	p := sheet.EnglishProblems[0]
	assert.Nil(t, p.Options, "translation items carry no options")
	assert.Equal(t, "I am ...", p.Hint)
	assert.True(t, sheet.SingleColumn())
}

func TestGenerateEnglish_DigitAnswerRejected(t *testing.T) {
	settings := worksheet.EnglishSettings{Count: 1, Grade: worksheet.EnglishGrade2, Type: worksheet.EnglishVocabulary}
	bad := `{"problems":[{"question":"사과","options":["apple","pear","plum","fig"],"answer":"1","hint":""}]}`
	good := `{"problems":[{"question":"사과","options":["apple","pear","plum","fig"],"answer":"apple","hint":""}]}`

	mock := llm.NewMockProvider(mockJSON(bad), mockJSON(good))
	svc, _ := newTestService(mock)

	sheet, err := svc.GenerateEnglish(context.Background(), settings)
	require.NoError(t, err)
	assert.Equal(t, "apple", sheet.EnglishProblems[0].Answer)
	assert.Equal(t, 2, mock.CallCount())
}

func TestLocalMath(t *testing.T) {
	svc, _ := newTestService(nil)
	settings := worksheet.MathSettings{Count: 30, Digits: arith.OneTwo, Operation: arith.Multiplication, Format: worksheet.Vertical}

	sheet, err := svc.LocalMath(settings)
	require.NoError(t, err)
	assert.Len(t, sheet.MathProblems, 30)
	for _, p := range sheet.MathProblems {
		assert.Equal(t, arith.Times, p.Op)
		assert.NoError(t, arith.Check(p, settings.Arith()))
	}
}
