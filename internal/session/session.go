// Package session models one user's analysis flow as an explicit state machine:
// pick an image, analyze it, then look at the result or the error.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anime-shed/recycling-guide-go/internal/classifier"
	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// State of a session
type State int

const (
	Idle State = iota
	ImageSelected
	Analyzing
	Result
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ImageSelected:
		return "image_selected"
	case Analyzing:
		return "analyzing"
	case Result:
		return "result"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current state
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrStaleTicket is returned when an analysis finishes after the session moved on
	ErrStaleTicket = errors.New("stale analysis ticket")
)

// MsgAnalysisFailed is shown when an analysis ends in error
const MsgAnalysisFailed = "failed to analyze image"

// Ticket identifies one analysis attempt
type Ticket uint64

// Snapshot is a copy of the session's visible state
type Snapshot struct {
	State  State                        `json:"-"`
	Status string                       `json:"state"`
	Image  string                       `json:"-"`
	Result *models.ClassificationResult `json:"result,omitempty"`
	Error  string                       `json:"error,omitempty"`
}

// Session is safe for concurrent use
type Session struct {
	mu         sync.Mutex
	state      State
	image      string
	result     *models.ClassificationResult
	errMsg     string
	generation uint64
	cancel     context.CancelFunc
}

// New creates an idle session
func New() *Session {
	return &Session{}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:  s.state,
		Status: s.state.String(),
		Image:  s.image,
		Result: s.result,
		Error:  s.errMsg,
	}
}

// SubmitImage selects an image to analyze. Not allowed while analyzing.
func (s *Session) SubmitImage(image string) error {
	if image == "" {
		return apperrors.NewInvalidInputError("image payload is empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Analyzing {
		return fmt.Errorf("%w: submit image while %s", ErrInvalidTransition, s.state)
	}
	s.state = ImageSelected
	s.image = image
	s.result = nil
	s.errMsg = ""
	return nil
}

// Begin starts analyzing the selected image. The returned context is canceled
// by Reset and released when the ticket is finished.
func (s *Session) Begin(ctx context.Context) (Ticket, context.Context, error) {
	ticket, actx, _, err := s.begin(ctx)
	return ticket, actx, err
}

func (s *Session) begin(ctx context.Context) (Ticket, context.Context, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != ImageSelected {
		return 0, nil, "", fmt.Errorf("%w: begin analysis while %s", ErrInvalidTransition, s.state)
	}

	s.generation++
	actx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = Analyzing
	return Ticket(s.generation), actx, s.image, nil
}

// Succeed records the result of the analysis identified by ticket
func (s *Session) Succeed(ticket Ticket, result *models.ClassificationResult) error {
	if result == nil {
		return apperrors.NewInvalidInputError("analysis produced no result", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishLocked(ticket); err != nil {
		return err
	}
	s.state = Result
	s.result = result
	return nil
}

// Fail records that the analysis identified by ticket ended in error
func (s *Session) Fail(ticket Ticket, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishLocked(ticket); err != nil {
		return err
	}
	if message == "" {
		message = MsgAnalysisFailed
	}
	s.state = Error
	s.errMsg = message
	return nil
}

func (s *Session) finishLocked(ticket Ticket) error {
	if s.state != Analyzing || uint64(ticket) != s.generation {
		return ErrStaleTicket
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}

// Reset returns to Idle from any state and abandons an in-flight analysis
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.state = Idle
	s.image = ""
	s.result = nil
	s.errMsg = ""
}

// SelectAlternative promotes one of the current result's alternatives
func (s *Session) SelectAlternative(alternativeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Result {
		return fmt.Errorf("%w: select alternative while %s", ErrInvalidTransition, s.state)
	}
	next, err := classifier.Reselect(s.result, alternativeID)
	if err != nil {
		return err
	}
	s.result = next
	return nil
}

// Run analyzes the selected image with c and applies the outcome, unless the
// session was reset in the meantime, in which case ErrStaleTicket is returned.
func (s *Session) Run(ctx context.Context, c classifier.Classifier) (*models.ClassificationResult, error) {
	ticket, actx, image, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}

	result, err := c.Classify(actx, image)
	if err == nil && result == nil {
		err = apperrors.NewInternalAnalysisError("classifier returned no result", nil)
	}
	if err != nil {
		message := MsgAnalysisFailed
		if apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) || apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			if appErr, ok := apperrors.AsAppError(err); ok {
				message = appErr.Message
			}
		}
		if failErr := s.Fail(ticket, message); failErr != nil {
			logger.WithContext(ctx).WithError(err).Debug("Discarding error of abandoned analysis")
			return nil, failErr
		}
		return nil, err
	}

	if err := s.Succeed(ticket, result); err != nil {
		logger.WithContext(ctx).WithField("item_id", result.Item.ID).Debug("Discarding result of abandoned analysis")
		return nil, err
	}
	return result, nil
}
