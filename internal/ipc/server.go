package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/engine"
	"github.com/verte-zerg/chainpick/internal/lexicon"
	"github.com/verte-zerg/chainpick/internal/model"
	"github.com/verte-zerg/chainpick/internal/turn"
)

var errBadRequest = errors.New("bad request")

// Server reads request frames and writes response frames. It is also the
// engine's Submitter: submissions go out as unsolicited submit frames.
type Server struct {
	dec    *msgpack.Decoder
	logger *log.Logger

	mu  sync.Mutex
	enc *msgpack.Encoder
}

// NewServer builds a server reading from r and writing to w.
func NewServer(r io.Reader, w io.Writer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		dec:    msgpack.NewDecoder(r),
		enc:    msgpack.NewEncoder(w),
		logger: logger,
	}
}

// Submit implements engine.Submitter.
func (s *Server) Submit(ctx context.Context, word string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.send(Response{Type: TypeSubmit, Word: word})
}

// Serve handles requests until the input ends or ctx is done. A clean end of
// input returns nil. The decoder blocks on the reader, so cancellation takes
// effect between frames.
func (s *Server) Serve(ctx context.Context, eng *engine.Engine) error {
	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode request: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Debug("request", "id", req.ID, "type", req.Type)
		resp := s.handle(ctx, eng, req)
		resp.ID = req.ID
		if err := s.send(resp); err != nil {
			return err
		}
	}
}

func (s *Server) send(resp Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(resp); err != nil {
		return fmt.Errorf("encode %s: %w", resp.Type, err)
	}
	return nil
}

func (s *Server) handle(ctx context.Context, eng *engine.Engine, req Request) Response {
	switch req.Type {
	case TypeTurn:
		sugg, err := eng.StartTurn(ctx, req.Syllable, req.Mine)
		if err != nil {
			return s.errorResponse(req, err)
		}
		return suggestionsResponse(req.ID, sugg)
	case TypeSuggest:
		c := model.ContextSelf
		if req.Context == string(model.ContextSpectator) {
			c = model.ContextSpectator
		}
		sugg, err := eng.Suggest(ctx, c, req.Syllable)
		if err != nil {
			return s.errorResponse(req, err)
		}
		return suggestionsResponse(req.ID, sugg)
	case TypeOutcome:
		err := eng.HandleOutcome(ctx, engine.Outcome{
			Word:     req.Word,
			Accepted: req.Accepted,
			Reason:   req.Reason,
			Mine:     req.Mine,
		})
		if err != nil {
			return s.errorResponse(req, err)
		}
		return Response{Type: TypeStatus, Status: statusOf(eng.Status())}
	case TypeLang:
		if err := eng.SetLanguage(ctx, req.Lang); err != nil {
			return s.errorResponse(req, err)
		}
		return Response{Type: TypeStatus, Status: statusOf(eng.Status())}
	case TypeCoverage:
		snap, err := editCoverage(eng, req)
		if err != nil {
			return s.errorResponse(req, err)
		}
		return Response{Type: TypeCoverage, Coverage: coverageOf(snap)}
	case TypePriority:
		order := eng.PriorityOrder()
		if len(req.Priority) > 0 {
			keys := make([]model.Criterion, 0, len(req.Priority))
			for _, p := range req.Priority {
				keys = append(keys, model.Criterion(p))
			}
			order = eng.SetPriorityOrder(keys)
		}
		out := make([]string, 0, len(order))
		for _, c := range order {
			out = append(out, string(c))
		}
		return Response{Type: TypePriority, Priority: out}
	case TypeStatus:
		return Response{Type: TypeStatus, Status: statusOf(eng.Status())}
	case TypeHealth:
		return Response{Type: TypeHealth}
	default:
		return s.errorResponse(req, fmt.Errorf("%w: unknown type %q", errBadRequest, req.Type))
	}
}

func editCoverage(eng *engine.Engine, req Request) (coverage.Snapshot, error) {
	op := req.Op
	if op == "" {
		op = OpGet
	}
	switch op {
	case OpGet:
		return eng.Coverage(), nil
	case OpReset:
		return eng.ResetCoverage(), nil
	case OpSetAllTargets:
		return eng.SetAllTargets(req.Value), nil
	case OpGoals:
		return eng.SetTargets(coverage.ParseGoals(req.Goals)), nil
	}

	letter, err := parseLetter(req.Letter)
	if err != nil {
		return coverage.Snapshot{}, err
	}
	switch op {
	case OpAdjustCount:
		return eng.AdjustCount(letter, req.Value), nil
	case OpSetCount:
		return eng.SetCount(letter, req.Value), nil
	case OpAdjustTarget:
		return eng.AdjustTarget(letter, req.Value), nil
	case OpSetTarget:
		return eng.SetTarget(letter, req.Value), nil
	default:
		return coverage.Snapshot{}, fmt.Errorf("%w: unknown coverage op %q", errBadRequest, op)
	}
}

func parseLetter(s string) (rune, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r < 'a' || r > 'z' {
		return 0, fmt.Errorf("%w: letter %q", errBadRequest, s)
	}
	return r, nil
}

func (s *Server) errorResponse(req Request, err error) Response {
	code := CodeInternal
	switch {
	case errors.Is(err, errBadRequest):
		code = CodeBadRequest
	case errors.Is(err, lexicon.ErrNoLexiconAvailable):
		code = CodeNoLexicon
	case errors.Is(err, turn.ErrPoolExhausted):
		code = CodeExhausted
	case errors.Is(err, engine.ErrNoRound):
		code = CodeNoRound
	}
	s.logger.Warn("request failed", "id", req.ID, "type", req.Type, "code", code, "err", err)
	return Response{Type: TypeError, Code: code, Error: err.Error()}
}
