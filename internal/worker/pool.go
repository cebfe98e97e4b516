package worker

import (
	"context"
	"log"
	"time"

	"pokerstudy-backend/internal/services"
)

// Pool drains the suggestion queue. Suggestion calls are slow relative to
// the UI, so they run here instead of inside the request handler; the
// per-session in-flight guard lives in the coach service.
type Pool struct {
	queue       Queue
	coach       *services.CoachService
	workerCount int
	stopChan    chan struct{}
}

func NewPool(queue Queue, coach *services.CoachService, workerCount int) *Pool {
	return &Pool{
		queue:       queue,
		coach:       coach,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		job, err := p.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			log.Printf("Worker %d: dequeue failed: %v", id, err)
			continue
		}
		if job == nil {
			continue // timeout, check stopChan again
		}

		log.Printf("Worker %d: processing suggestion job %s (session %s)", id, job.ID, job.SessionID)
		p.coach.Process(ctx, *job)
	}
}
