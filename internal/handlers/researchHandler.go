package handlers

import (
	"sync"

	"github.com/akolanti/ResearchAgent/internal/rag"
	"github.com/akolanti/ResearchAgent/internal/report"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

var (
	handlerInstance *ResearchHandler //private singleton
	once            sync.Once
	logRH           *logger_i.Logger
)

type ResearchHandler struct {
	service rag.Service
	reports report.Store
}

func InitResearchHandler(service rag.Service, reports report.Store) {
	once.Do(func() {
		handlerInstance = &ResearchHandler{service: service, reports: reports}
		logRH = logger_i.NewLogger("RequestHandler")
		logRH.Info("Starting research handler")
	})
}
