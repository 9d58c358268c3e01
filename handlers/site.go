// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/danielhkuo/paralympics/auth"
	"github.com/danielhkuo/paralympics/cliparse"
	"github.com/danielhkuo/paralympics/models"
	"github.com/danielhkuo/paralympics/uploads"
	"github.com/danielhkuo/paralympics/web"
)

// MainHandler serves the home page, profiles, photos and competition entries.
type MainHandler struct {
	db     *gorm.DB
	cfg    cliparse.Config
	photos *uploads.Set
	views  *web.Renderer
	logger *slog.Logger
}

func NewMainHandler(db *gorm.DB, cfg cliparse.Config, photos *uploads.Set, views *web.Renderer, opts ...Option) *MainHandler {
	o := newOptions(opts)
	return &MainHandler{db: db, cfg: cfg, photos: photos, views: views, logger: o.logger}
}

// Index handles GET /
func (h *MainHandler) Index(w http.ResponseWriter, r *http.Request) {
	var counts struct {
		Regions int64
		Medals  int64
	}
	db := h.db.WithContext(r.Context())
	if err := db.Table(models.RegionTable).Count(&counts.Regions).Error; err != nil {
		h.logger.Error("failed to count regions", "error", err)
	}
	if err := db.Table(models.MedalsTable).Count(&counts.Medals).Error; err != nil {
		h.logger.Error("failed to count medals", "error", err)
	}

	h.views.Render(w, r, http.StatusOK, "index", web.Page{Title: "Paralympics", Data: counts})
}

type profileView struct {
	Profile  *models.Profile
	Region   string
	PhotoURL string
}

// Profile handles GET /profile
func (h *MainHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.findProfile(r)
	if err != nil {
		h.logger.Error("failed to load profile", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not load your profile.")
		return
	}

	view := profileView{Profile: profile}
	if profile != nil {
		if profile.Photo != "" {
			view.PhotoURL = h.photos.URL(profile.Photo)
		}
		if profile.RegionID != nil {
			var region models.Region
			if err := h.db.WithContext(r.Context()).First(&region, *profile.RegionID).Error; err == nil {
				view.Region = region.Region
			}
		}
	}

	h.views.Render(w, r, http.StatusOK, "profile", web.Page{Title: "Profile", Data: view})
}

type profileEditView struct {
	Regions  []models.Region
	RegionID *int
}

// Selected reports whether id is the profile's current region
func (v profileEditView) Selected(id int) bool {
	return v.RegionID != nil && *v.RegionID == id
}

// EditProfileForm handles GET /profile/edit
func (h *MainHandler) EditProfileForm(w http.ResponseWriter, r *http.Request) {
	profile, err := h.findProfile(r)
	if err != nil {
		h.logger.Error("failed to load profile", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not load your profile.")
		return
	}

	form := models.ProfileForm{}
	if profile != nil {
		form = models.ProfileForm{Username: profile.Username, Bio: profile.Bio, RegionID: profile.RegionID}
	}
	h.renderProfileEdit(w, r, http.StatusOK, form, nil)
}

// EditProfile handles POST /profile/edit
func (h *MainHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	db := h.db.WithContext(r.Context())

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.renderProfileEdit(w, r, http.StatusBadRequest, models.ProfileForm{}, map[string]string{"": "Could not read the form."})
		return
	}

	form := models.ProfileForm{
		Username: r.PostFormValue("username"),
		Bio:      r.PostFormValue("bio"),
	}
	errs := validateForm(form)
	if errs == nil {
		errs = map[string]string{}
	}

	regionID, err := parseRegionID(db, r.PostFormValue("region_id"))
	switch {
	case errors.Is(err, errBadRegion):
		errs["region_id"] = "Choose a region from the list."
	case err != nil:
		h.logger.Error("failed to check region", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not save your profile.")
		return
	}
	form.RegionID = regionID

	if _, ok := errs["username"]; !ok {
		var taken int64
		err := db.Model(&models.Profile{}).Where("username = ? AND user_id <> ?", form.Username, userID).Count(&taken).Error
		if err != nil {
			h.logger.Error("failed to check username", "error", err)
			h.views.Error(w, r, http.StatusInternalServerError, "Could not save your profile.")
			return
		}
		if taken > 0 {
			errs["username"] = "That username is taken."
		}
	}

	if len(errs) > 0 {
		h.renderProfileEdit(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	profile, err := h.findProfile(r)
	if err != nil {
		h.logger.Error("failed to load profile", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not save your profile.")
		return
	}
	if profile == nil {
		profile = &models.Profile{UserID: userID}
	}

	// The photo is saved last so a rejected form never leaves a stray file
	if _, fh, err := r.FormFile("photo"); err == nil && fh.Filename != "" {
		stored, err := h.photos.Save(fh)
		switch {
		case errors.Is(err, uploads.ErrNotAllowed):
			h.renderProfileEdit(w, r, http.StatusUnprocessableEntity, form, map[string]string{"photo": "Only image files are allowed."})
			return
		case errors.Is(err, uploads.ErrTooLarge):
			h.renderProfileEdit(w, r, http.StatusUnprocessableEntity, form, map[string]string{"photo": "The photo is too large (" + err.Error() + ")."})
			return
		case err != nil:
			h.logger.Error("failed to save photo", "user_id", userID, "error", err)
			h.views.Error(w, r, http.StatusInternalServerError, "Could not save your photo.")
			return
		}
		if profile.Photo != "" {
			h.removePhoto(profile.Photo)
		}
		profile.Photo = stored
	}

	profile.Username = form.Username
	profile.Bio = form.Bio
	profile.RegionID = form.RegionID
	if err := db.Save(profile).Error; err != nil {
		h.logger.Error("failed to save profile", "user_id", userID, "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not save your profile.")
		return
	}

	h.logger.Info("profile saved", "user_id", userID, "username", profile.Username)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// Photo handles GET /uploads/photos/{name}
func (h *MainHandler) Photo(w http.ResponseWriter, r *http.Request) {
	p, err := h.photos.Path(chi.URLParam(r, "name"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if _, err := os.Stat(p); err != nil {
		http.NotFound(w, r)
		return
	}

	// SVG uploads must not run script in the site's origin
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	http.ServeFile(w, r, p)
}

type entryRow struct {
	Event     string
	Region    string
	Notes     string
	CreatedAt time.Time
}

type entriesView struct {
	Regions []models.Region
	Entries []entryRow
}

// Entries handles GET /entries
func (h *MainHandler) Entries(w http.ResponseWriter, r *http.Request) {
	h.renderEntries(w, r, http.StatusOK, models.EntryForm{}, nil)
}

// CreateEntry handles POST /entries
func (h *MainHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	db := h.db.WithContext(r.Context())

	form := models.EntryForm{
		Event: r.PostFormValue("event"),
		Notes: r.PostFormValue("notes"),
	}
	errs := validateForm(form)
	if errs == nil {
		errs = map[string]string{}
	}

	regionID, err := parseRegionID(db, r.PostFormValue("region_id"))
	switch {
	case errors.Is(err, errBadRegion):
		errs["region_id"] = "Choose a region from the list."
	case err != nil:
		h.logger.Error("failed to check region", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not save your entry.")
		return
	}
	form.RegionID = regionID

	if len(errs) > 0 {
		h.renderEntries(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	entry := models.CompetitionEntry{
		UserID:   userID,
		Event:    form.Event,
		RegionID: form.RegionID,
		Notes:    form.Notes,
	}
	if err := db.Create(&entry).Error; err != nil {
		h.logger.Error("failed to insert entry", "user_id", userID, "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not save your entry.")
		return
	}

	h.logger.Info("entry created", "user_id", userID, "entry_id", entry.ID, "region", regionLabel(entry.RegionID))
	http.Redirect(w, r, "/entries", http.StatusSeeOther)
}

func (h *MainHandler) renderProfileEdit(w http.ResponseWriter, r *http.Request, status int, form models.ProfileForm, errs map[string]string) {
	regions, err := listRegions(h.db.WithContext(r.Context()))
	if err != nil {
		h.logger.Error("failed to list regions", "error", err)
	}
	h.views.Render(w, r, status, "profile_edit", web.Page{
		Title:  "Edit profile",
		Form:   form,
		Errors: errs,
		Data:   profileEditView{Regions: regions, RegionID: form.RegionID},
	})
}

func (h *MainHandler) renderEntries(w http.ResponseWriter, r *http.Request, status int, form models.EntryForm, errs map[string]string) {
	db := h.db.WithContext(r.Context())

	regions, err := listRegions(db)
	if err != nil {
		h.logger.Error("failed to list regions", "error", err)
	}

	var rows []entryRow
	err = db.Table("competition_entries AS e").
		Select("e.event, COALESCE(r.region, '') AS region, e.notes, e.created_at").
		Joins("LEFT JOIN region r ON r.id = e.region_id").
		Where("e.user_id = ?", auth.UserID(r.Context())).
		Order("e.created_at DESC, e.id DESC").
		Scan(&rows).Error
	if err != nil {
		h.logger.Error("failed to list entries", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Could not load your entries.")
		return
	}

	h.views.Render(w, r, status, "entries", web.Page{
		Title:  "Competition entries",
		Form:   form,
		Errors: errs,
		Data:   entriesView{Regions: regions, Entries: rows},
	})
}

// findProfile returns the current user's profile, or nil if there is none
func (h *MainHandler) findProfile(r *http.Request) (*models.Profile, error) {
	var profile models.Profile
	err := h.db.WithContext(r.Context()).Where("user_id = ?", auth.UserID(r.Context())).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (h *MainHandler) removePhoto(stored string) {
	p, err := h.photos.Path(stored)
	if err != nil {
		return
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.logger.Warn("failed to remove old photo", "file", stored, "error", err)
	}
}

// regionLabel formats an optional region id for logs
func regionLabel(id *int) string {
	if id == nil {
		return "none"
	}
	return strconv.Itoa(*id)
}
