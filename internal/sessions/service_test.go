package sessions

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevSidd2006/learnquest/internal/apierr"
	"github.com/DevSidd2006/learnquest/internal/gamification"
	"github.com/DevSidd2006/learnquest/internal/generator"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
	"github.com/DevSidd2006/learnquest/internal/storage"
)

type testEnv struct {
	svc  *Service
	mem  *storage.MemStorage
	mock *generator.MockClient
	gam  *gamification.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := storage.NewMemStorage()
	mock := generator.NewMockClient()
	gen := generator.New(mock, 0, logger.Nop())
	gam := gamification.NewService(mem, 1000, logger.Nop())
	return &testEnv{
		svc:  NewService(mem, gen, gam, logger.Nop()),
		mem:  mem,
		mock: mock,
		gam:  gam,
	}
}

func (e *testEnv) createSession(t *testing.T, userID *string) (*models.LearningSession, *models.Outline) {
	t.Helper()
	s, err := e.svc.CreateSession(context.Background(), userID, models.CreateSessionRequest{
		Topic:         "Python",
		Difficulty:    models.DifficultyBeginner,
		LearningStyle: models.StylePractical,
	})
	require.NoError(t, err)
	o, err := s.DecodeOutline()
	require.NoError(t, err)
	return s, o
}

func intPtr(n int) *int { return &n }

func TestCreateSession_StartsAtZero(t *testing.T) {
	env := newTestEnv(t)

	first, outline := env.createSession(t, nil)
	second, _ := env.createSession(t, nil)

	assert.Equal(t, 0, first.CurrentStep)
	assert.False(t, first.Completed)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, outline.Subtopics, 5)
	assert.Nil(t, first.UserID)

	list, err := env.svc.ListSessions(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
}

func TestCreateSession_GenerationFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mock.Enqueue(generator.MockResponse{Err: errors.New("upstream down")})

	_, err := env.svc.CreateSession(context.Background(), nil, models.CreateSessionRequest{
		Topic: "Python", Difficulty: models.DifficultyBeginner, LearningStyle: models.StyleVisual,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apierr.Status(err))

	list, _ := env.svc.ListSessions(context.Background(), nil)
	assert.Empty(t, list, "nothing stored on failure")
}

func TestQuiz_Memoized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, o := env.createSession(t, nil)
	callsBefore := env.mock.CallCount()

	first, err := env.svc.Quiz(ctx, s.ID, o.Subtopics[0].ID)
	require.NoError(t, err)
	second, err := env.svc.Quiz(ctx, s.ID, o.Subtopics[0].ID)
	require.NoError(t, err)

	require.Len(t, first, generator.QuizQuestionCount)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Equal(t, callsBefore+1, env.mock.CallCount(), "second fetch must not regenerate")

	cards1, err := env.svc.Flashcards(ctx, s.ID, o.Subtopics[0].ID)
	require.NoError(t, err)
	cards2, err := env.svc.Flashcards(ctx, s.ID, o.Subtopics[0].ID)
	require.NoError(t, err)
	require.Len(t, cards1, generator.FlashcardCount)
	assert.Equal(t, cards1[0].ID, cards2[0].ID)
	assert.Equal(t, callsBefore+2, env.mock.CallCount())
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, o := env.createSession(t, nil)

	_, err := env.svc.GetSession(ctx, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, http.StatusNotFound, apierr.Status(err))

	_, err = env.svc.Quiz(ctx, "missing", o.Subtopics[0].ID)
	assert.Equal(t, http.StatusNotFound, apierr.Status(err))

	_, err = env.svc.Flashcards(ctx, s.ID, "no-such-subtopic")
	assert.Equal(t, http.StatusNotFound, apierr.Status(err))
	msg, _ := apierr.Public(err, "")
	assert.Equal(t, "Subtopic not found", msg)

	_, err = env.svc.SubmitQuiz(ctx, models.SubmitQuizRequest{SessionID: s.ID, SubtopicID: "nope", Score: intPtr(1)})
	assert.Equal(t, http.StatusNotFound, apierr.Status(err))
}

func TestSubmitQuiz_ScenarioAndXP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, o := env.createSession(t, nil)

	_, err := env.svc.Quiz(ctx, s.ID, o.Subtopics[0].ID)
	require.NoError(t, err)

	res, err := env.svc.SubmitQuiz(ctx, models.SubmitQuizRequest{
		SessionID: s.ID, SubtopicID: o.Subtopics[0].ID, Score: intPtr(4), TimeSpent: intPtr(90),
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 40, res.XPEarned)

	got, _ := env.svc.GetSession(ctx, s.ID)
	assert.Equal(t, 1, got.CurrentStep)
	assert.False(t, got.Completed)

	p, _ := env.mem.GetProgress(ctx, nil)
	assert.Equal(t, 40, p.TotalXP)
	assert.Equal(t, 1, p.QuizzesCompleted)
	assert.Equal(t, 80, p.AverageQuizScore)
	assert.Equal(t, 90, p.TotalStudyTime)
}

func TestSubmitQuiz_ScoreCappedAtQuestionCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, o := env.createSession(t, nil)

	questions, err := env.svc.Quiz(ctx, s.ID, o.Subtopics[0].ID)
	require.NoError(t, err)

	res, err := env.svc.SubmitQuiz(ctx, models.SubmitQuizRequest{SessionID: s.ID, SubtopicID: o.Subtopics[0].ID, Score: intPtr(90)})
	require.NoError(t, err)
	assert.Equal(t, len(questions)*10, res.XPEarned)

	p, _ := env.mem.GetProgress(ctx, nil)
	assert.Equal(t, len(questions)*10, p.TotalXP)
	assert.Equal(t, 100, p.AverageQuizScore)
}

func TestSubmitQuiz_WithoutStoredQuiz(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, o := env.createSession(t, nil)

	res, err := env.svc.SubmitQuiz(ctx, models.SubmitQuizRequest{SessionID: s.ID, SubtopicID: o.Subtopics[0].ID, Score: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 30, res.XPEarned)

	p, _ := env.mem.GetProgress(ctx, nil)
	assert.Equal(t, 30, p.TotalXP)
	assert.Equal(t, 0, p.QuizzesCompleted, "no quiz row to mark")
}

func TestProgress_NeverRegresses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, o := env.createSession(t, nil)

	_, err := env.svc.SubmitQuiz(ctx, models.SubmitQuizRequest{SessionID: s.ID, SubtopicID: o.Subtopics[2].ID, Score: intPtr(5)})
	require.NoError(t, err)
	got, _ := env.svc.GetSession(ctx, s.ID)
	assert.Equal(t, 3, got.CurrentStep)

	_, err = env.svc.CompleteFlashcards(ctx, models.CompleteFlashcardsRequest{SessionID: s.ID, SubtopicID: o.Subtopics[0].ID})
	require.NoError(t, err)
	got, _ = env.svc.GetSession(ctx, s.ID)
	assert.Equal(t, 3, got.CurrentStep, "earlier subtopic must not move the step back")
}

func TestCompletion_ExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, o := env.createSession(t, nil)
	last := o.Subtopics[len(o.Subtopics)-1].ID

	for i := 0; i < 2; i++ {
		_, err := env.svc.SubmitQuiz(ctx, models.SubmitQuizRequest{SessionID: s.ID, SubtopicID: last, Score: intPtr(2)})
		require.NoError(t, err)
	}
	_, err := env.svc.CompleteFlashcards(ctx, models.CompleteFlashcardsRequest{SessionID: s.ID, SubtopicID: last})
	require.NoError(t, err)

	got, _ := env.svc.GetSession(ctx, s.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, len(o.Subtopics), got.CurrentStep)

	p, _ := env.mem.GetProgress(ctx, nil)
	assert.Equal(t, 1, p.CompletedTopics)
}

func TestCompleteFlashcards_XP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, o := env.createSession(t, nil)

	res, err := env.svc.CompleteFlashcards(ctx, models.CompleteFlashcardsRequest{SessionID: s.ID, SubtopicID: o.Subtopics[1].ID})
	require.NoError(t, err)
	assert.Equal(t, 0, res.XPEarned, "no deck fetched yet")

	_, err = env.svc.Flashcards(ctx, s.ID, o.Subtopics[1].ID)
	require.NoError(t, err)
	res, err = env.svc.CompleteFlashcards(ctx, models.CompleteFlashcardsRequest{SessionID: s.ID, SubtopicID: o.Subtopics[1].ID})
	require.NoError(t, err)
	assert.Equal(t, 40, res.XPEarned)

	p, _ := env.mem.GetProgress(ctx, nil)
	assert.Equal(t, 40, p.TotalXP)
	assert.Equal(t, 8, p.FlashcardsReviewed)

	got, _ := env.svc.GetSession(ctx, s.ID)
	assert.Equal(t, 2, got.CurrentStep)
}

func TestOwnedSession_AchievementsAndProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, err := env.mem.CreateUser(ctx, models.NewUser{Email: "owner@example.com"})
	require.NoError(t, err)

	s, o := env.createSession(t, &u.ID)
	require.NotNil(t, s.UserID)

	_, err = env.svc.Quiz(ctx, s.ID, o.Subtopics[0].ID)
	require.NoError(t, err)
	_, err = env.svc.SubmitQuiz(ctx, models.SubmitQuizRequest{SessionID: s.ID, SubtopicID: o.Subtopics[0].ID, Score: intPtr(5)})
	require.NoError(t, err)

	achievements, err := env.mem.ListAchievements(ctx, u.ID)
	require.NoError(t, err)
	types := make([]string, 0, len(achievements))
	for _, a := range achievements {
		types = append(types, a.AchievementType)
	}
	assert.ElementsMatch(t, []string{gamification.FirstSession, gamification.FirstQuiz, gamification.PerfectQuiz}, types)

	mine, _ := env.mem.GetProgress(ctx, &u.ID)
	assert.Equal(t, 50+50+25+150, mine.TotalXP)
	assert.Equal(t, 1, mine.QuizzesCompleted)

	guest, _ := env.mem.GetProgress(ctx, nil)
	assert.Equal(t, 0, guest.TotalXP)

	guestList, _ := env.svc.ListSessions(ctx, nil)
	assert.Empty(t, guestList)
}

func TestExplain(t *testing.T) {
	env := newTestEnv(t)

	e, err := env.svc.Explain(context.Background(), models.ExplanationRequest{
		Concept: "Recursion", Context: "Algorithms", Difficulty: models.DifficultyBeginner,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, e.Analogy)

	env.mock.Enqueue(generator.MockResponse{Content: `{"concept":"x"}`})
	_, err = env.svc.Explain(context.Background(), models.ExplanationRequest{
		Concept: "Recursion", Context: "Algorithms", Difficulty: models.DifficultyBeginner,
	})
	require.Error(t, err)
	var genErr *generator.GenerationError
	assert.ErrorAs(t, err, &genErr)
}
