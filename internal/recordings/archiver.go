package recordings

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"propertyvoice_backend/internal/calls"
	"propertyvoice_backend/internal/events"
	"propertyvoice_backend/platform/logger"
)

// downloadTimeout bounds the fetch from the voice platform's URL.
const downloadTimeout = 2 * time.Minute

// Archiver copies recordings from the voice platform into our bucket when
// a call has been processed. Archival is best effort: failures are logged
// and the call keeps its original platform URL.
type Archiver struct {
	store  *Store
	repo   *calls.Repository
	client *http.Client
	log    *logger.Logger
}

func NewArchiver(store *Store, repo *calls.Repository, log *logger.Logger) *Archiver {
	return &Archiver{
		store:  store,
		repo:   repo,
		client: &http.Client{Timeout: downloadTimeout},
		log:    log,
	}
}

// Subscribe registers the archiver on the event bus.
func (a *Archiver) Subscribe(bus events.Bus) {
	bus.Subscribe("calls.processed", events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		processed, ok := e.(events.CallProcessed)
		if !ok {
			return nil
		}
		if processed.RecordingURL == "" {
			return nil
		}
		if err := a.Archive(ctx, processed); err != nil {
			a.log.Warn("recording archival failed",
				"callId", processed.CallID,
				"externalCallId", processed.ExternalCallID,
				"error", err,
			)
		}
		return nil
	}))
}

// Archive downloads the recording and stores it under calls/<external id>.
func (a *Archiver) Archive(ctx context.Context, e events.CallProcessed) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.RecordingURL, nil)
	if err != nil {
		return fmt.Errorf("build recording request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download recording: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	key := objectKey(e.ExternalCallID, e.RecordingURL, contentType)

	if _, err := a.store.Upload(ctx, key, contentType, resp.Body, resp.ContentLength); err != nil {
		return err
	}

	if err := a.repo.SetRecordingKey(ctx, e.CallID, key); err != nil {
		return fmt.Errorf("record archived key: %w", err)
	}

	a.log.Info("recording archived", "externalCallId", e.ExternalCallID, "key", key)
	return nil
}

// objectKey derives the storage key, preferring the URL's extension and
// falling back to the content type.
func objectKey(externalCallID, recordingURL, contentType string) string {
	ext := path.Ext(strings.SplitN(path.Base(recordingURL), "?", 2)[0])
	if ext == "" {
		switch {
		case strings.Contains(contentType, "wav"):
			ext = ".wav"
		case strings.Contains(contentType, "mpeg"), strings.Contains(contentType, "mp3"):
			ext = ".mp3"
		default:
			ext = ".audio"
		}
	}
	return "calls/" + externalCallID + ext
}
