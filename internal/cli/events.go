package cli

import (
	"sync"

	"github.com/filedrop/filedrop/internal/events"
	"github.com/filedrop/filedrop/internal/logging"
)

// logEvents mirrors bus activity into debug log lines. The returned stop
// func closes the bus and waits for the pending events to be logged.
func logEvents(bus *events.EventBus, log *logging.Logger) func() {
	ch := bus.SubscribeAll()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range ch {
			logEvent(log, ev)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			bus.Close()
			wg.Wait()
		})
	}
}

func logEvent(log *logging.Logger, ev events.Event) {
	switch e := ev.(type) {
	case *events.BatchEvent:
		log.Debug().Str("event", string(e.Type())).Str("batch", e.BatchID).Int("total", e.Total).Send()
	case *events.ItemEvent:
		l := log.Debug().Str("event", string(e.Type())).Str("batch", e.BatchID).
			Int("index", e.Index).Str("file", e.Name).Str("state", e.State)
		if e.Error != nil {
			l = l.Err(e.Error).Str("kind", e.FailureKind)
		}
		l.Send()
	case *events.ProgressEvent:
		log.Debug().Str("event", string(e.Type())).Str("batch", e.BatchID).
			Int("completed", e.Completed).Int("total", e.Total).Str("status", e.Status).Send()
	case *events.SettledEvent:
		log.Debug().Str("event", string(e.Type())).Str("batch", e.BatchID).
			Int("succeeded", e.Succeeded).Int("failed", e.Failed).Dur("duration", e.Duration).Send()
	case *events.RegistryEvent:
		log.Debug().Str("event", string(e.Type())).Int("count", e.Count).Err(e.Error).Send()
	case *events.FileEvent:
		log.Debug().Str("event", string(e.Type())).Str("file", e.Name).Send()
	case *events.DropZoneEvent:
		log.Debug().Str("event", string(e.Type())).Bool("active", e.Active).Send()
	case *events.LogEvent:
		log.Debug().Str("event", string(e.Type())).Str("level", e.Level.String()).Err(e.Error).Msg(e.Message)
	}
}
