package handlers

import (
	"context"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/heritage-moments/album-studio/internal/constants"
	"github.com/heritage-moments/album-studio/internal/database"
	"github.com/heritage-moments/album-studio/internal/editor"
	"github.com/heritage-moments/album-studio/internal/storage"
)

// UploadHandler handles media upload endpoints. Uploads run as async jobs;
// clients follow progress over SSE.
type UploadHandler struct {
	editorHandler *EditorHandler
	jobManager    *JobManager
	store         storage.Store
	library       database.MediaStore
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(eh *EditorHandler, jm *JobManager, store storage.Store, library database.MediaStore) *UploadHandler {
	return &UploadHandler{
		editorHandler: eh,
		jobManager:    jm,
		store:         store,
		library:       library,
	}
}

// readUploadedFiles reads the multipart files into memory for the upload
// pipeline.
func readUploadedFiles(files []*multipart.FileHeader) ([]editor.UploadFile, error) {
	uploads := make([]editor.UploadFile, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, editor.UploadFile{
			Name: filepath.Base(fileHeader.Filename),
			Data: data,
		})
	}
	return uploads, nil
}

// Upload accepts a multipart batch and starts an async upload job.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess := h.editorHandler.getOwnedSession(w, r)
	if sess == nil {
		return
	}

	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}
	if len(files) > constants.MaxFilesPerUpload {
		respondError(w, http.StatusBadRequest, "too many files in one batch")
		return
	}

	uploads, err := readUploadedFiles(files)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read uploaded files")
		return
	}

	job := h.jobManager.CreateJob(uuid.New().String(), sess.ID, len(uploads))
	go h.runUploadJob(job, sess, uploads)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
	})
}

// runUploadJob executes the upload batch, broadcasting per-file progress.
// The session lock is held for the whole batch: uploads mutate the album
// aggregate, so they serialize with editing commands.
func (h *UploadHandler) runUploadJob(job *UploadJob, sess *editor.Session, files []editor.UploadFile) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	job.SetCancel(cancel)
	job.SetStatus(JobStatusRunning)

	var results []editor.UploadResult
	sess.With(func(s *editor.Store) {
		results = s.UploadMedia(ctx, files, h.store, h.library, func(fileIdx, percent int) {
			job.mu.Lock()
			if percent == 100 {
				job.ProcessedFiles = fileIdx + 1
			}
			job.mu.Unlock()
			job.SendEvent(JobEvent{
				Type: "progress",
				Data: map[string]int{
					"file_index": fileIdx,
					"percent":    percent,
				},
			})
		})
	})

	views := make([]UploadResultView, len(results))
	failed := 0
	for i, res := range results {
		views[i] = UploadResultView{Name: res.Name, URL: res.URL}
		if res.Asset != nil {
			views[i].AssetID = res.Asset.ID
		}
		if res.Err != nil {
			views[i].Error = res.Err.Error()
			failed++
			log.Printf("warning: upload %s failed: %v", sanitizeForLog(res.Name), res.Err)
		}
	}

	job.mu.Lock()
	job.Results = views
	job.mu.Unlock()

	if job.GetStatus() == JobStatusCancelled {
		return
	}
	if failed == len(results) && failed > 0 {
		job.SetStatus(JobStatusFailed)
	} else {
		job.SetStatus(JobStatusCompleted)
	}
	job.SendEvent(JobEvent{Type: "done", Data: map[string]any{
		"results": views,
		"failed":  failed,
	}})
}

// Status returns the current state of an upload job.
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	job := h.lookupJob(w, r)
	if job == nil {
		return
	}
	job.mu.RLock()
	defer job.mu.RUnlock()
	respondJSON(w, http.StatusOK, job)
}

// Events streams upload job progress over SSE.
func (h *UploadHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r,
		func(id string) SSEJob {
			if job := h.jobManager.GetJob(id); job != nil {
				return job
			}
			return nil
		},
		func(j SSEJob) any {
			return map[string]any{"status": j.GetStatus()}
		})
}

// Cancel aborts a running upload job.
func (h *UploadHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	job := h.lookupJob(w, r)
	if job == nil {
		return
	}
	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

func (h *UploadHandler) lookupJob(w http.ResponseWriter, r *http.Request) *UploadJob {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return nil
	}
	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return nil
	}
	return job
}
