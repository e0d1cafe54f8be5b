package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"group-planner/internal/models"
)

// fileState is the on-disk document for the JSON-file store.
type fileState struct {
	Sessions     []models.Session      `json:"sessions"`
	Participants []models.Participant  `json:"participants"`
	Plans        []models.Plan         `json:"plans"`
	Feedback     []models.PlanFeedback `json:"feedback"`
}

// FileStore persists all planning state in a single JSON file. A write
// replaces the whole document, so a multi-entity operation is visible
// all-or-nothing.
type FileStore struct {
	mu    sync.RWMutex
	state fileState
	file  string
}

// NewFileStore creates a file store, loading existing data if the file exists
func NewFileStore(filePath string) (*FileStore, error) {
	s := &FileStore{file: filePath}

	if _, err := os.Stat(filePath); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load storage: %w", err)
		}
	}

	return s, nil
}

// CreateSession persists a session and all its participants in one write
func (s *FileStore) CreateSession(_ context.Context, session models.Session, participants []models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.Sessions {
		if existing.ID == session.ID {
			return fmt.Errorf("session %s already exists", session.ID)
		}
	}

	s.state.Sessions = append(s.state.Sessions, session)
	s.state.Participants = append(s.state.Participants, participants...)
	if err := s.save(); err != nil {
		// Roll back the in-memory append so a failed write leaves nothing visible
		s.state.Sessions = s.state.Sessions[:len(s.state.Sessions)-1]
		s.state.Participants = s.state.Participants[:len(s.state.Participants)-len(participants)]
		return err
	}
	return nil
}

// Session retrieves a session by id
func (s *FileStore) Session(_ context.Context, id string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.state.Sessions {
		if sess.ID == id {
			return sess, nil
		}
	}
	return models.Session{}, ErrNotFound
}

// Participant retrieves a participant by id
func (s *FileStore) Participant(_ context.Context, id string) (models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.state.Participants {
		if p.ID == id {
			return clone(p), nil
		}
	}
	return models.Participant{}, ErrNotFound
}

// ParticipantByContact finds a participant by normalized contact match
func (s *FileStore) ParticipantByContact(_ context.Context, contact string) (models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := ContactKey(contact)
	for _, p := range s.state.Participants {
		if ContactKey(p.Contact) == key {
			return clone(p), nil
		}
	}
	return models.Participant{}, ErrNotFound
}

// SessionParticipants returns all participants of a session in insertion order
func (s *FileStore) SessionParticipants(_ context.Context, sessionID string) ([]models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Participant
	for _, p := range s.state.Participants {
		if p.SessionID == sessionID {
			result = append(result, clone(p))
		}
	}
	return result, nil
}

// UpdateParticipant updates a participant's mutable fields. Recorded
// responses are changed only through AppendResponse.
func (s *FileStore) UpdateParticipant(_ context.Context, participant models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.state.Participants {
		if p.ID == participant.ID {
			s.state.Participants[i].PreferredMethod = participant.PreferredMethod
			s.state.Participants[i].State = participant.State
			s.state.Participants[i].AwaitingContinuation = participant.AwaitingContinuation
			s.state.Participants[i].Completed = participant.Completed
			return s.save()
		}
	}
	return ErrNotFound
}

// AppendResponse appends one question/response pair to a participant
func (s *FileStore) AppendResponse(_ context.Context, participantID string, qr models.QuestionResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.state.Participants {
		if p.ID == participantID {
			s.state.Participants[i].Responses = append(s.state.Participants[i].Responses, qr)
			return s.save()
		}
	}
	return ErrNotFound
}

// SavePlan appends a new plan version
func (s *FileStore) SavePlan(_ context.Context, plan models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.Plans {
		if existing.ID == plan.ID {
			return fmt.Errorf("plan %s already exists", plan.ID)
		}
	}
	s.state.Plans = append(s.state.Plans, plan)
	return s.save()
}

// UpdatePlan advances a stored plan's status and organizer feedback
func (s *FileStore) UpdatePlan(_ context.Context, plan models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.state.Plans {
		if p.ID == plan.ID {
			s.state.Plans[i].Status = plan.Status
			s.state.Plans[i].OrganizerFeedback = plan.OrganizerFeedback
			return s.save()
		}
	}
	return ErrNotFound
}

// Plan retrieves a plan version by id
func (s *FileStore) Plan(_ context.Context, id string) (models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.state.Plans {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Plan{}, ErrNotFound
}

// SessionPlans returns all plan versions of a session ordered by version
func (s *FileStore) SessionPlans(_ context.Context, sessionID string) ([]models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Plan
	for _, p := range s.state.Plans {
		if p.SessionID == sessionID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

// UpsertPlanFeedback records a participant's acceptance of a plan version,
// replacing any prior record for the same (plan, participant) pair
func (s *FileStore) UpsertPlanFeedback(_ context.Context, fb models.PlanFeedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.state.Feedback {
		if existing.PlanID == fb.PlanID && existing.ParticipantID == fb.ParticipantID {
			s.state.Feedback[i] = fb
			return s.save()
		}
	}
	s.state.Feedback = append(s.state.Feedback, fb)
	return s.save()
}

// PlanFeedback returns all feedback records for a plan version
func (s *FileStore) PlanFeedback(_ context.Context, planID string) ([]models.PlanFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.PlanFeedback
	for _, fb := range s.state.Feedback {
		if fb.PlanID == planID {
			result = append(result, fb)
		}
	}
	return result, nil
}

// Close is a no-op for the file store
func (s *FileStore) Close() error { return nil }

func clone(p models.Participant) models.Participant {
	out := p
	out.Responses = make([]models.QuestionResponse, len(p.Responses))
	copy(out.Responses, p.Responses)
	return out
}

// save writes the state document to file
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(s.file, data, 0644)
}

// load reads the state document from file
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		s.state = fileState{}
		return nil
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}
