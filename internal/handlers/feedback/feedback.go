package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"vcc-feedback/internal/feedback"
	"vcc-feedback/internal/form"
	"vcc-feedback/internal/render"
	"vcc-feedback/internal/session"
	"vcc-feedback/internal/slot"
	myErr "vcc-feedback/internal/types/errors"
	types "vcc-feedback/internal/types/feedback"
)

const (
	maxAPILimit   = 100
	healthTimeout = 2 * time.Second

	msgStoreFailed = "保存に失敗しました。時間をおいて再度お試しください。"
	msgBadForm     = "フォームを読み取れませんでした。"
)

type FeedbackHandler struct {
	Logger         *zap.SugaredLogger
	Store          feedback.RecordStore
	SessionManager session.SessionRepo
	Form           *form.Service
	Pages          *render.Pages
	Slots          slot.Storage
	Location       *time.Location
	ListLimit      int
}

func NewFeedbackHandler(
	l *zap.SugaredLogger,
	store feedback.RecordStore,
	sr session.SessionRepo,
	fs *form.Service,
	pages *render.Pages,
	slots slot.Storage,
	loc *time.Location,
	listLimit int,
) *FeedbackHandler {
	return &FeedbackHandler{
		Logger:         l,
		Store:          store,
		SessionManager: sr,
		Form:           fs,
		Pages:          pages,
		Slots:          slots,
		Location:       loc,
		ListLimit:      listLimit,
	}
}

// Index - последние публичные отзывы
func (h *FeedbackHandler) Index(w http.ResponseWriter, r *http.Request) {
	items := render.ProjectList(h.Store.Load(r.Context()), h.ListLimit, h.Location)

	h.writePage(w, http.StatusOK, func(buf io.Writer) error {
		return h.Pages.Index(buf, items)
	})
}

// FormPage - пустая форма
func (h *FeedbackHandler) FormPage(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, http.StatusOK, func(buf io.Writer) error {
		return h.Pages.Form(buf, render.FormView{})
	})
}

// Submit - обработка формы.
// Невалидные данные: 422 и та же форма с сообщениями под полями.
// Успех: 303 на детальную страницу.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Logger.Warnf("failed to parse feedback form: %v", err)
		h.writeError(w, http.StatusBadRequest, msgBadForm)
		return
	}

	raw := types.RawSubmission{
		Nickname:   r.PostForm.Get(types.FieldNickname),
		Cohort:     r.PostForm.Get(types.FieldCohort),
		Rating:     r.PostForm.Get(types.FieldRating),
		Body:       r.PostForm.Get(types.FieldBody),
		Visibility: r.PostForm.Get(types.FieldVisibility),
		Agree:      r.PostForm.Get(types.FieldAgree) != "",
	}

	record, fieldErrs, err := h.Form.Submit(r.Context(), raw, h.stashTo(w, r))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, msgStoreFailed)
		return
	}

	if fieldErrs != nil {
		h.writePage(w, http.StatusUnprocessableEntity, func(buf io.Writer) error {
			return h.Pages.Form(buf, render.FormView{Values: raw, Errors: fieldErrs})
		})
		return
	}

	http.Redirect(w, r, "/view?id="+url.QueryEscape(record.ID), http.StatusSeeOther)
}

// stashTo - кладет запись в текущую сессию, при необходимости заводит новую.
// Cookie ставится до редиректа.
func (h *FeedbackHandler) stashTo(w http.ResponseWriter, r *http.Request) form.Stasher {
	if h.SessionManager == nil {
		return nil
	}

	return func(ctx context.Context, record feedback.Record) error {
		sess, err := h.SessionManager.CheckSession(r)
		if err != nil {
			sess, err = h.SessionManager.CreateSession(ctx, w)
			if err != nil {
				return err
			}
		}

		return h.SessionManager.SaveLastSubmission(ctx, sess, record)
	}
}

// View - детальная страница: сначала сессия, потом ?id=
func (h *FeedbackHandler) View(w http.ResponseWriter, r *http.Request) {
	var last *feedback.Record
	if h.SessionManager != nil {
		sess, err := h.SessionManager.CheckSession(r)
		switch {
		case err == nil:
			last = sess.LastSubmission
		case !errors.Is(err, myErr.ErrNoSession):
			h.Logger.Infof("session lookup failed, using query id: %v", err)
		}
	}

	record := render.ResolveDetail(r.Context(), last, r.URL.Query().Get("id"), h.Store)

	var detail *render.Detail
	if record != nil {
		d := render.ProjectDetail(*record, h.Location)
		detail = &d
	}

	h.writePage(w, http.StatusOK, func(buf io.Writer) error {
		return h.Pages.Detail(buf, detail)
	})
}

// APIList - тот же список, что на главной, в JSON.
// ?limit= необязателен, больше maxAPILimit не отдаем.
func (h *FeedbackHandler) APIList(w http.ResponseWriter, r *http.Request) {
	limit := h.ListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			myErr.SendErrorTo(w, myErr.ErrBadLimit, http.StatusBadRequest, h.Logger)
			return
		}
		limit = min(n, maxAPILimit)
	}

	items := render.ProjectList(h.Store.Load(r.Context()), limit, h.Location)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(items); err != nil {
		h.Logger.Errorf("failed to encode feedback list: %v", err)
	}
}

// Health - проверяет доступность хранилища слотов
func (h *FeedbackHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.Slots.Ping(ctx); err != nil {
		myErr.SendErrorTo(w, err, http.StatusServiceUnavailable, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(myErr.NewErrorServer(nil)); err != nil {
		h.Logger.Error(err)
	}
}

// writePage - сначала рендерим в буфер, чтобы ошибка шаблона не оставила половину страницы
func (h *FeedbackHandler) writePage(w http.ResponseWriter, status int, fill func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		h.Logger.Errorf("failed to render page: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Warnf("failed to write page: %v", err)
	}
}

func (h *FeedbackHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writePage(w, status, func(buf io.Writer) error {
		return h.Pages.Error(buf, message)
	})
}
