package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
)

// asynqServer wraps asynq.Server with shutdown handling.
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and starts the Asynq server.
func setupAsynqServer(cfg *Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Queues: map[string]int{
				"default": 10,
				"low":     5,
			},
			// Deletion and sweeping are I/O-bound, not CPU-bound; a modest
			// concurrency keeps backend pressure low.
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq] ❌ Task failed - Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown gracefully shuts down the server, waiting for in-flight tasks.
func (s *asynqServer) Shutdown() {
	log.Println("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Println("[Worker] ✓ Stopped")
}
