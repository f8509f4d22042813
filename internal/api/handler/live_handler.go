package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/mutation"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
	"github.com/roots/admin-console/internal/core/session"
)

const (
	liveBuffer           = 32
	defaultLiveKeepAlive = 15 * time.Second
)

// LiveHandler streams a moderation screen as server-sent events: list
// snapshots, session changes and notices.
type LiveHandler struct {
	service   ports.ModerationService
	keepAlive time.Duration
}

func NewLiveHandler(service ports.ModerationService, keepAlive time.Duration) *LiveHandler {
	if keepAlive <= 0 {
		keepAlive = defaultLiveKeepAlive
	}
	return &LiveHandler{service: service, keepAlive: keepAlive}
}

type liveEvent struct {
	name string
	data any
}

type liveList struct {
	Status     query.Status       `json:"status"`
	Items      []requestView      `json:"items"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Pager      []int              `json:"pager,omitempty"`
	Stale      bool               `json:"stale"`
	Error      string             `json:"error,omitempty"`
}

// latestList holds only the newest list snapshot not yet written, so a burst
// of cache changes never leaves the stream behind the cache.
type latestList struct {
	mu sync.Mutex
	ch chan liveList
}

func newLatestList() *latestList {
	return &latestList{ch: make(chan liveList, 1)}
}

// Put replaces any unwritten snapshot with l.
func (s *latestList) Put(l liveList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.ch:
	default:
	}
	s.ch <- l
}

func (s *latestList) C() <-chan liveList {
	return s.ch
}

func toLiveList(s query.Snapshot) liveList {
	out := liveList{Status: s.Status, Items: []requestView{}, Stale: s.Stale}
	if page, ok := query.Data[domain.Page[domain.PassRequest]](s); ok {
		out.Items = toRequestViews(page.Items)
		out.Pagination = &page.Pagination
		out.Pager = domain.PageWindow(page.Pagination.Page, page.Pages())
	}
	if s.Err != nil {
		out.Error = domain.ErrorMessage(s.Err)
	}
	return out
}

// Stream handles GET /api/live/:kind. The stream ends when the client goes
// away or the session is signed out.
//
// @Summary      Live moderation screen
// @Tags         moderation
// @Produce      text/event-stream
// @Param        kind    path   string  true   "payment or upgrade"
// @Param        page    query  int     false  "1-indexed page"
// @Param        status  query  string  false  "pending (default), approved, rejected, or all"
// @Success      200
// @Failure      400     {object}  errorResponse
// @Router       /api/live/{kind} [get]
func (h *LiveHandler) Stream(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	kind, err := domain.ParseRequestKind(c.Param("kind"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	status, err := queryStatus(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	// Session changes and notices are discrete and queue up; list snapshots
	// are coalesced.
	events := make(chan liveEvent, liveBuffer)
	push := func(ev liveEvent) {
		select {
		case events <- ev:
		default:
		}
	}

	stopSession := ws.Session.Subscribe(func(s session.Snapshot) {
		push(liveEvent{name: "session", data: s})
	})
	defer stopSession()
	stopNotices := ws.Inbox.Subscribe(func(n mutation.Notice) {
		push(liveEvent{name: "notice", data: n})
	})
	defer stopNotices()
	lists := newLatestList()
	stopList := h.service.Watch(ws, kind, ports.ListQuery{Page: queryPage(c), Status: status}, func(s query.Snapshot) {
		lists.Put(toLiveList(s))
	})
	defer stopList()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case l := <-lists.C():
			if err := writeEvent(res, liveEvent{name: "list", data: l}); err != nil {
				return nil
			}
		case ev := <-events:
			if err := writeEvent(res, ev); err != nil {
				return nil
			}
			if snap, ok := ev.data.(session.Snapshot); ok && snap.User == nil && !snap.IsLoading {
				return nil
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeEvent(res *echo.Response, ev liveEvent) error {
	data, err := json.Marshal(ev.data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.name, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
