// Package handler binds the rollbook stores to the HTTP API.
package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rollbook/internal/attendance"
	"rollbook/internal/auth"
	"rollbook/internal/identity"
	"rollbook/internal/roster"
)

// Handler carries the stores and session settings the endpoints need.
type Handler struct {
	identity   *identity.Service
	roster     *roster.Service
	attendance *attendance.Service
	revoker    *auth.Revoker

	jwtIssuer  string
	jwtKey     string
	sessionTTL time.Duration
}

// New constructs a Handler over the three stores.
func New(id *identity.Service, ro *roster.Service, att *attendance.Service, revoker *auth.Revoker, jwtIssuer, jwtKey string, sessionTTL time.Duration) *Handler {
	return &Handler{
		identity:   id,
		roster:     ro,
		attendance: att,
		revoker:    revoker,
		jwtIssuer:  jwtIssuer,
		jwtKey:     jwtKey,
		sessionTTL: sessionTTL,
	}
}

// Register mounts all routes. Everything past the auth endpoints
// requires a live session token.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/v1/auth/signup", h.Signup)
	r.POST("/v1/auth/login", h.Login)

	g := r.Group("/v1", auth.Middleware(h.jwtKey, h.jwtIssuer, h.revoker))
	g.POST("/auth/logout", h.Logout)
	g.GET("/students", h.ListStudents)
	g.POST("/students", h.AddStudent)
	g.PUT("/students/:id", h.UpdateStudent)
	g.DELETE("/students/:id", h.DeleteStudent)
	g.POST("/attendance", h.MarkAttendance)
	g.POST("/attendance/batch", h.MarkBatch)
	g.GET("/attendance", h.QueryAttendance)
	g.GET("/attendance/export", h.ExportAttendance)
	g.GET("/attendance/summary", h.AttendanceSummary)
}

// ---------- Auth ----------

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates a new operator account.
func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.identity.CreateAccount(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrDuplicateUsername) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and issues a session token. Unknown user
// and wrong password come back as the same 401.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, ok, err := h.identity.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	session, err := auth.Issue(user.ID, user.Username, h.jwtIssuer, h.jwtKey, h.sessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": session.Token,
		"expires_at":   session.ExpiresAt.Unix(),
	})
}

// Logout denylists the current token until it expires.
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	if err := h.revoker.Revoke(c.Request.Context(), claims); err != nil {
		log.Printf("revoke failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Roster ----------

type studentRequest struct {
	RollNo     string `json:"roll_no" binding:"required"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

func (req studentRequest) student() roster.Student {
	return roster.Student{
		RollNo:     req.RollNo,
		Name:       req.Name,
		Department: req.Department,
		Year:       req.Year,
		Phone:      req.Phone,
		Address:    req.Address,
	}
}

// ListStudents returns the roster ordered by roll number.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.roster.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, students)
}

// AddStudent inserts a roster entry.
func (h *Handler) AddStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	student, err := h.roster.Add(c.Request.Context(), req.student())
	if err != nil {
		c.JSON(rosterStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, student)
}

// UpdateStudent replaces all fields of one roster entry.
func (h *Handler) UpdateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	student := req.student()
	student.ID = c.Param("id")
	if err := h.roster.Update(c.Request.Context(), student); err != nil {
		c.JSON(rosterStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, student)
}

// DeleteStudent removes a student and all its attendance. Missing ids
// delete nothing and still return 204.
func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.roster.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func rosterStatus(err error) int {
	switch {
	case errors.Is(err, roster.ErrDuplicateRollNo):
		return http.StatusConflict
	case errors.Is(err, roster.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// ---------- Attendance ----------

type markRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Date      string `json:"date"`
}

// MarkAttendance upserts the mark for one student and day.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.attendance.Mark(c.Request.Context(), req.StudentID, req.Status, date)
	if err != nil {
		c.JSON(attendanceStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

type batchRequest struct {
	Marks map[string]string `json:"marks" binding:"required"`
	Date  string            `json:"date"`
}

// MarkBatch applies each mark independently and reports per-entry
// outcomes; one bad entry never blocks the rest.
func (h *Handler) MarkBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results := h.attendance.MarkBatch(c.Request.Context(), req.Marks, date)
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "failed": failed})
}

// QueryAttendance returns records, optionally filtered by ?date=.
func (h *Handler) QueryAttendance(c *gin.Context) {
	records, err := h.queryRecords(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, records)
}

// ExportAttendance streams the same query as downloadable CSV.
func (h *Handler) ExportAttendance(c *gin.Context) {
	records, err := h.queryRecords(c)
	if err != nil {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="attendance.csv"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)
	if err := attendance.WriteCSV(c.Writer, records); err != nil {
		log.Printf("csv export failed: %v", err)
	}
}

// AttendanceSummary returns the status breakdown used by the analysis view.
func (h *Handler) AttendanceSummary(c *gin.Context) {
	date, err := dateFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	counts, err := h.attendance.Summary(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) queryRecords(c *gin.Context) ([]attendance.Record, error) {
	date, err := dateFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, err
	}
	records, err := h.attendance.QueryByDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, err
	}
	return records, nil
}

func attendanceStatus(err error) int {
	switch {
	case errors.Is(err, attendance.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, attendance.ErrStudentNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(attendance.DateLayout, s)
}

func dateFilter(c *gin.Context) (*time.Time, error) {
	s := c.Query("date")
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(attendance.DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
