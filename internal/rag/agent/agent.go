package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/classifier"
	"github.com/akolanti/ResearchAgent/internal/rag/generator"
	"github.com/akolanti/ResearchAgent/internal/rag/retriever"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

// DefaultAnswer is returned when the run ends without any answer set.
const DefaultAnswer = "Sorry, I could not find an answer to your question based on the provided documents."

type State string

const (
	StateStart     State = "START"
	StateClassify  State = "CLASSIFY"
	StateRetrieve  State = "RETRIEVE"
	StateSummarize State = "SUMMARIZE"
	StateQnA       State = "QNA"
	StateCompare   State = "COMPARE"
	StateExtract   State = "EXTRACT"
	StateInsight   State = "INSIGHT"
	StateEnd       State = "END"
)

var generatorStates = map[commonModels.TaskKind]State{
	commonModels.TaskSummarize: StateSummarize,
	commonModels.TaskQnA:       StateQnA,
	commonModels.TaskCompare:   StateCompare,
	commonModels.TaskExtract:   StateExtract,
	commonModels.TaskInsight:   StateInsight,
}

// the graph is a single pass, nothing leads back to CLASSIFY or RETRIEVE
var transitions = map[State][]State{
	StateStart:     {StateClassify},
	StateClassify:  {StateRetrieve},
	StateRetrieve:  {StateSummarize, StateQnA, StateCompare, StateExtract, StateInsight},
	StateSummarize: {StateEnd},
	StateQnA:       {StateEnd},
	StateCompare:   {StateEnd},
	StateExtract:   {StateEnd},
	StateInsight:   {StateEnd},
}

func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Result struct {
	Answer   string
	ReportMd *string
	Task     commonModels.TaskKind
}

type Agent interface {
	Run(ctx context.Context, sessionId string, query string) (Result, error)
}

type agent struct {
	classifier classifier.Classifier
	retriever  retriever.Retriever
	generator  generator.Generator
	tasks      map[commonModels.TaskKind]generator.TaskDescriptor
	logger     *logger_i.Logger
}

// New wires the graph. tasks decides which generator states are reachable,
// usually generator.Registry().
func New(c classifier.Classifier, r retriever.Retriever, g generator.Generator, tasks map[commonModels.TaskKind]generator.TaskDescriptor) Agent {
	return &agent{
		classifier: c,
		retriever:  r,
		generator:  g,
		tasks:      tasks,
		logger:     logger_i.NewLogger("Research Agent"),
	}
}

func (a *agent) Run(ctx context.Context, sessionId string, query string) (Result, error) {
	log := a.logger.ForContext(ctx).With("sessionId", sessionId)
	state := &commonModels.QueryState{SessionId: sessionId, Query: query}

	current := StateStart
	for current != StateEnd {
		next, err := a.step(ctx, current, state)
		if err != nil {
			log.Warn("Agent stopped", "state", current, "error", err)
			return Result{Task: state.Task}, err
		}
		if !CanTransition(current, next) {
			return Result{Task: state.Task}, fmt.Errorf("illegal transition %s -> %s", current, next)
		}
		log.Debug("Agent transition", "from", current, "to", next)
		current = next
	}

	answer := DefaultAnswer
	if state.Answer != nil && strings.TrimSpace(*state.Answer) != "" {
		answer = *state.Answer
	}
	metrics.IncrementTask(string(state.Task))
	return Result{Answer: answer, ReportMd: state.Report, Task: state.Task}, nil
}

func (a *agent) step(ctx context.Context, current State, state *commonModels.QueryState) (State, error) {
	switch current {
	case StateStart:
		return StateClassify, nil

	case StateClassify:
		kind, err := a.classifier.Classify(ctx, state.Query)
		if err != nil {
			metrics.IncrementClassificationFailure()
			return current, err
		}
		state.Task = kind
		return StateRetrieve, nil

	case StateRetrieve:
		result, err := a.retriever.Retrieve(ctx, state.SessionId, state.Query)
		if err != nil {
			return current, err
		}
		state.Retrieval = result
		return a.route(state.Task)

	default:
		task, ok := a.tasks[state.Task]
		if !ok {
			return current, unroutable(state.Task)
		}
		out := a.generator.Generate(ctx, task, state.Query, state.Retrieval)
		state.Answer = &out.Answer
		if out.Report != nil {
			state.Report = out.Report
		}
		return StateEnd, nil
	}
}

// route picks the generator state from the classified task alone.
func (a *agent) route(kind commonModels.TaskKind) (State, error) {
	next, ok := generatorStates[kind]
	if !ok {
		return StateRetrieve, unroutable(kind)
	}
	if _, registered := a.tasks[kind]; !registered {
		return StateRetrieve, unroutable(kind)
	}
	return next, nil
}

func unroutable(kind commonModels.TaskKind) error {
	metrics.IncrementClassificationFailure()
	return &agentErrors.TaskClassificationError{
		Raw:    string(kind),
		Reason: "No generator registered for task",
	}
}
