package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/lox/rpsplus/internal/game"
	"github.com/lox/rpsplus/internal/referee"
)

const apiBasePath = "/v1"

type apiErrorBody struct {
	Code    string         `json:"code" example:"match_not_found"`
	Message string         `json:"message" example:"match not found"`
	Details map[string]any `json:"details,omitempty"`
}

// apiError is the error envelope for every API failure.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

func newAPIError(status int, code, message string) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{status: status, Body: apiErrorBody{Code: code, Message: message}}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "unprocessable"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
	}
}

func handleError(err error) huma.StatusError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, referee.ErrMatchNotFound):
		return newAPIError(http.StatusNotFound, "match_not_found", err.Error())
	case errors.Is(err, referee.ErrTooManyMatches):
		return newAPIError(http.StatusServiceUnavailable, "too_many_matches", err.Error())
	case errors.Is(err, game.ErrInconsistentState):
		return newAPIError(http.StatusUnprocessableEntity, "inconsistent_state", err.Error())
	case errors.Is(err, game.ErrMatchAlreadyOver):
		return newAPIError(http.StatusConflict, "match_over", err.Error())
	case errors.Is(err, game.ErrInvalidAction):
		return newAPIError(http.StatusUnprocessableEntity, "invalid_action", err.Error())
	case errors.Is(err, game.ErrContractViolation):
		return newAPIError(http.StatusUnprocessableEntity, "illegal_transition", err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, "internal", err.Error())
	}
}

var configureHuma sync.Once

// newAPI mounts the typed operations on router.
func (s *Server) newAPI(router chi.Router) huma.API {
	configureHuma.Do(func() {
		huma.DefaultArrayNullable = false
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			if len(errs) > 0 {
				msg = msg + ": " + errors.Join(errs...).Error()
			}
			return newAPIError(status, "", msg)
		}
	})

	hcfg := huma.DefaultConfig("RPS Plus Referee API", "1.0.0")
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, apiBasePath)

	s.registerTools(group)
	s.registerMatches(group)
	return api
}

// Tool operations

type ValidateRequest struct {
	Input        string `json:"input" doc:"Raw player input"`
	OverrideUsed bool   `json:"override_used,omitempty" doc:"Whether the player's bomb is spent"`
}

type ValidateResponse struct {
	Valid  bool       `json:"valid"`
	Action string     `json:"action,omitempty"`
	Error  *ErrorData `json:"error,omitempty"`
}

type OpponentActionRequest struct {
	OverrideUsed bool `json:"override_used,omitempty" doc:"Whether the opponent's bomb is spent"`
}

type OpponentActionResponse struct {
	Action string `json:"action"`
}

type ResolveRequest struct {
	PlayerAction   string `json:"player_action"`
	OpponentAction string `json:"opponent_action"`
}

type ResolveResponse struct {
	Outcome     string `json:"outcome"`
	Explanation string `json:"explanation"`
}

type ApplyRequest struct {
	State          StateData `json:"state"`
	PlayerAction   string    `json:"player_action"`
	OpponentAction string    `json:"opponent_action"`
	Outcome        string    `json:"outcome"`
}

func (s *Server) registerTools(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "validate-action",
		Method:      http.MethodPost,
		Path:        "/tools/validate",
		Summary:     "Validate raw player input",
	}, func(ctx context.Context, input *struct {
		Body ValidateRequest `json:"body"`
	}) (*struct {
		Body ValidateResponse `json:"body"`
	}, error) {
		out := &struct {
			Body ValidateResponse `json:"body"`
		}{}
		action, err := game.Validate(input.Body.Input, input.Body.OverrideUsed)
		if err != nil {
			out.Body.Error = turnError(err)
			return out, nil
		}
		out.Body.Valid = true
		out.Body.Action = action.String()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "opponent-action",
		Method:      http.MethodPost,
		Path:        "/tools/opponent-action",
		Summary:     "Draw an opponent action",
	}, func(ctx context.Context, input *struct {
		Body OpponentActionRequest `json:"body"`
	}) (*struct {
		Body OpponentActionResponse `json:"body"`
	}, error) {
		action := s.opponent.ChooseAction(game.MatchState{OpponentOverrideUsed: input.Body.OverrideUsed})
		return &struct {
			Body OpponentActionResponse `json:"body"`
		}{Body: OpponentActionResponse{Action: action.String()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "resolve-round",
		Method:      http.MethodPost,
		Path:        "/tools/resolve",
		Summary:     "Resolve one round",
		Errors:      []int{http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body ResolveRequest `json:"body"`
	}) (*struct {
		Body ResolveResponse `json:"body"`
	}, error) {
		player, err := parseActionField("player_action", input.Body.PlayerAction)
		if err != nil {
			return nil, handleError(err)
		}
		opponent, err := parseActionField("opponent_action", input.Body.OpponentAction)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ResolveResponse `json:"body"`
		}{Body: ResolveResponse{
			Outcome:     game.Resolve(player, opponent).String(),
			Explanation: game.Explain(player, opponent),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "apply-round",
		Method:      http.MethodPost,
		Path:        "/tools/apply",
		Summary:     "Apply a resolved round to a match snapshot",
		Errors:      []int{http.StatusConflict, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body ApplyRequest `json:"body"`
	}) (*struct {
		Body StateData `json:"body"`
	}, error) {
		state, err := input.Body.State.ToGame()
		if err != nil {
			return nil, newAPIError(http.StatusUnprocessableEntity, "invalid_state", err.Error())
		}
		if err := state.Verify(); err != nil {
			return nil, handleError(err)
		}
		if state.IsOver {
			return nil, handleError(game.ErrMatchAlreadyOver)
		}
		player, err := parseActionField("player_action", input.Body.PlayerAction)
		if err != nil {
			return nil, handleError(err)
		}
		opponent, err := parseActionField("opponent_action", input.Body.OpponentAction)
		if err != nil {
			return nil, handleError(err)
		}
		outcome, err := game.ParseOutcome(input.Body.Outcome)
		if err != nil {
			return nil, newAPIError(http.StatusUnprocessableEntity, "invalid_outcome", err.Error())
		}
		if err := game.CheckApply(state, player, opponent, outcome); err != nil {
			return nil, handleError(err)
		}
		next := game.ApplyRound(state, player, opponent, outcome)
		return &struct {
			Body StateData `json:"body"`
		}{Body: StateFromGame(next)}, nil
	})
}

// Match operations

type MatchResponse struct {
	ID         string    `json:"id"`
	State      StateData `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

type TurnRequest struct {
	Input string `json:"input" doc:"Raw player input"`
}

func matchResponse(m referee.Match) MatchResponse {
	return MatchResponse{
		ID:         m.ID,
		State:      StateFromGame(m.State),
		CreatedAt:  m.CreatedAt,
		LastActive: m.LastActive,
	}
}

type matchPath struct {
	ID string `path:"id" doc:"Match ID"`
}

func (s *Server) registerMatches(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-match",
		Method:        http.MethodPost,
		Path:          "/matches",
		Summary:       "Start a match",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusServiceUnavailable},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body MatchResponse `json:"body"`
	}, error) {
		m, err := s.referee.Create()
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MatchResponse `json:"body"`
		}{Body: matchResponse(m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-match",
		Method:      http.MethodGet,
		Path:        "/matches/{id}",
		Summary:     "Get a match snapshot",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *matchPath) (*struct {
		Body MatchResponse `json:"body"`
	}, error) {
		m, err := s.referee.Get(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MatchResponse `json:"body"`
		}{Body: matchResponse(m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "play-turn",
		Method:      http.MethodPost,
		Path:        "/matches/{id}/turns",
		Summary:     "Play one turn",
		Description: "Rejected input and turns after the final round are reported in the body with status rejected or match_over.",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string      `path:"id" doc:"Match ID"`
		Body TurnRequest `json:"body"`
	}) (*struct {
		Body TurnResultData `json:"body"`
	}, error) {
		m, result, err := s.referee.PlayTurn(input.ID, input.Body.Input)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TurnResultData `json:"body"`
		}{Body: TurnResultFromGame(m, result)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-match",
		Method:        http.MethodDelete,
		Path:          "/matches/{id}",
		Summary:       "Drop a match",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *matchPath) (*struct{}, error) {
		if err := s.referee.Delete(input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
