// Package recommender builds per-student performance profiles from completed
// test history and selects question sets biased toward each student's weak
// spots. The selection is a weighted random draw over the question catalog:
// weak-chapter membership dominates, then chapter preference, then
// difficulty and type preference. Students with no graded history get a
// stratified random mix instead.
package recommender

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"examportal/backend/models"
)

// Relevance score weights. The flat weak-chapter bonus outweighs any single
// preference term so topic remediation wins over format remediation.
const (
	weakChapterBonus       = 5.0
	chapterPrefWeight      = 3.0
	difficultyPrefWeight   = 2.0
	questionTypePrefWeight = 2.0
)

// ErrInvalidCount is returned when a caller asks for a non-positive number
// of questions.
var ErrInvalidCount = errors.New("recommender: question count must be positive")

// Engine is the recommendation engine. Construct one per process with New
// and share it; the feature table and profile cache are internal state
// guarded for concurrent use.
type Engine struct {
	store    PerformanceStore
	profiles *profileCache

	mu       sync.Mutex
	features []FeatureRow

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates an engine reading from store. profileTTL bounds how long a
// cached student profile is reused; zero means entries never expire on
// their own (Invalidate still drops them).
func New(store PerformanceStore, profileTTL time.Duration) *Engine {
	return &Engine{
		store:    store,
		profiles: newProfileCache(profileTTL),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Recommend selects up to n questions for a student, optionally restricted
// to the given chapters, and returns the full question records. With fewer
// eligible questions than requested it returns all of them; with no
// eligible questions it returns an empty slice.
func (e *Engine) Recommend(studentID uint, chapterIDs []uint, n int) ([]models.Question, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}

	features, err := e.featureTable()
	if err != nil {
		return nil, err
	}

	eligible := filterByChapters(features, chapterIDs)
	if len(eligible) == 0 {
		return []models.Question{}, nil
	}

	profile, err := e.profileFor(studentID)
	if err != nil {
		return nil, err
	}

	var ids []uint
	if profile == nil {
		e.rngMu.Lock()
		ids = coldStart(e.rng, eligible, n)
		e.rngMu.Unlock()
	} else if len(eligible) <= n {
		// No sampling needed, everything eligible is recommended
		ids = make([]uint, len(eligible))
		for i, row := range eligible {
			ids[i] = row.QuestionID
		}
	} else {
		probs := scoreProbabilities(eligible, profile)

		e.rngMu.Lock()
		indices := sampleWithoutReplacement(e.rng, probs, n)
		e.rngMu.Unlock()

		ids = make([]uint, len(indices))
		for i, idx := range indices {
			ids[i] = eligible[idx].QuestionID
		}
	}

	return e.store.FetchQuestionsByIDs(ids)
}

// Invalidate drops the cached profile for a student. The submit path calls
// this whenever a new completed result is recorded so the next
// recommendation sees the fresh history.
func (e *Engine) Invalidate(studentID uint) {
	e.profiles.Invalidate(studentID)
}

// Refresh discards the cached feature table; the next recommendation
// rebuilds it from the current catalog.
func (e *Engine) Refresh() {
	e.mu.Lock()
	e.features = nil
	e.mu.Unlock()
}

// featureTable returns the cached feature table, building it on first use.
// A failed build leaves nothing cached.
func (e *Engine) featureTable() ([]FeatureRow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.features != nil {
		return e.features, nil
	}

	features, err := BuildFeatureTable(e.store)
	if err != nil {
		return nil, fmt.Errorf("build feature table: %w", err)
	}
	e.features = features
	return features, nil
}

// profileFor returns the student's cached profile, building and caching it
// on a miss. A nil profile (insufficient history) is a valid cached value;
// a build error caches nothing.
func (e *Engine) profileFor(studentID uint) (*Profile, error) {
	if profile, ok := e.profiles.Get(studentID); ok {
		return profile, nil
	}

	profile, err := BuildProfile(e.store, studentID)
	if err != nil {
		return nil, fmt.Errorf("build profile for student %d: %w", studentID, err)
	}
	e.profiles.Set(studentID, profile)
	return profile, nil
}

func filterByChapters(rows []FeatureRow, chapterIDs []uint) []FeatureRow {
	if len(chapterIDs) == 0 {
		return rows
	}

	wanted := make(map[uint]bool, len(chapterIDs))
	for _, id := range chapterIDs {
		wanted[id] = true
	}

	filtered := make([]FeatureRow, 0, len(rows))
	for _, row := range rows {
		if wanted[row.ChapterID] {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// scoreProbabilities computes each row's relevance to the profile and
// normalizes the scores into a probability distribution. Deterministic for
// a given table and profile.
func scoreProbabilities(rows []FeatureRow, profile *Profile) []float64 {
	scores := make([]float64, len(rows))
	maxScore := 0.0
	for i, row := range rows {
		score := 0.0

		if profile.WeakChapters[row.ChapterID] {
			score += weakChapterBonus
		}
		score += chapterPrefWeight * preference(profile.ChapterPreference, row.ChapterID)
		score += difficultyPrefWeight * preference(profile.DifficultyPreference, row.Difficulty)
		score += questionTypePrefWeight * preference(profile.TypePreference, row.QuestionType)

		scores[i] = score
		if score > maxScore {
			maxScore = score
		}
	}

	// All-zero scores mean nothing distinguishes the rows; treat them as
	// uniform instead of dividing by zero
	if maxScore == 0 {
		for i := range scores {
			scores[i] = 1
		}
		maxScore = 1
	}

	sum := 0.0
	for i := range scores {
		scores[i] /= maxScore
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
	return scores
}

func preference[K comparable](prefs map[K]float64, key K) float64 {
	if v, ok := prefs[key]; ok {
		return v
	}
	return defaultPreference
}
