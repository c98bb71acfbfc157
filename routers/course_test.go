package routers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"adconnect/config"
	courseModels "adconnect/models/course"
	"adconnect/utils/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCourseCRUD(t *testing.T) {
	s := newTestServer(t)
	pkg := testutil.CreatePackage(t, s.db, "Starter")
	other := testutil.CreatePackage(t, s.db, "Premium")

	resp, env := s.request(t, http.MethodPost, "/api/courses", map[string]interface{}{"title": "SEO"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "All fields are required", env.Message)

	body := map[string]interface{}{
		"title":       "SEO Basics",
		"description": "Rank higher",
		"preview":     "https://youtu.be/seo",
		"package":     999,
	}
	resp, env = s.request(t, http.MethodPost, "/api/courses", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Package not found", env.Message)

	body["package"] = pkg.ID
	resp, env = s.request(t, http.MethodPost, "/api/courses", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var course courseModels.Course
	env.decode(t, &course)
	assert.Equal(t, pkg.ID, course.PackageID)

	resp, env = s.request(t, http.MethodPost, "/api/courses", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Course Already Exists!", env.Message)

	testutil.CreateCourse(t, s.db, "Ads 101", other.ID)

	var courses []courseModels.Course
	_, env = s.request(t, http.MethodGet, "/api/courses", nil)
	env.decode(t, &courses)
	assert.Len(t, courses, 2)

	_, env = s.request(t, http.MethodGet, "/api/courses?package="+itoa(other.ID), nil)
	env.decode(t, &courses)
	require.Len(t, courses, 1)
	assert.Equal(t, "Ads 101", courses[0].Title)

	resp, _ = s.request(t, http.MethodGet, "/api/courses/"+itoa(course.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.request(t, http.MethodPut, "/api/courses/"+itoa(course.ID), map[string]interface{}{"title": "Ads 101"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = s.request(t, http.MethodPut, "/api/courses/"+itoa(course.ID), map[string]interface{}{"package": 999})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = s.request(t, http.MethodPut, "/api/courses/"+itoa(course.ID), map[string]interface{}{"package": other.ID, "description": "New"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	env.decode(t, &course)
	assert.Equal(t, other.ID, course.PackageID)
	assert.Equal(t, "New", course.Description)

	module := testutil.CreateModule(t, s.db, "Keywords", course.ID)
	resp, env = s.request(t, http.MethodDelete, "/api/courses/"+itoa(course.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"modules":1`)

	require.NoError(t, s.db.Unscoped().Delete(&module).Error)
	resp, _ = s.request(t, http.MethodDelete, "/api/courses/"+itoa(course.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.request(t, http.MethodGet, "/api/courses/"+itoa(course.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestModuleCRUD(t *testing.T) {
	s := newTestServer(t)
	pkg := testutil.CreatePackage(t, s.db, "Starter")
	course := testutil.CreateCourse(t, s.db, "SEO", pkg.ID)

	body := map[string]interface{}{
		"title":    "Keywords",
		"about":    "Finding keywords",
		"video":    "https://youtu.be/kw",
		"resource": "true",
		"course":   999,
	}
	resp, _ := s.request(t, http.MethodPost, "/api/modules", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body["course"] = course.ID
	resp, env := s.request(t, http.MethodPost, "/api/modules", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var module courseModels.Module
	env.decode(t, &module)
	assert.Equal(t, courseModels.ResourceFlagTrue, module.Resource)

	body["resource"] = "maybe"
	resp, _ = s.request(t, http.MethodPost, "/api/modules", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var modules []courseModels.Module
	_, env = s.request(t, http.MethodGet, "/api/modules?course="+itoa(course.ID), nil)
	env.decode(t, &modules)
	assert.Len(t, modules, 1)

	resp, env = s.request(t, http.MethodPut, "/api/modules/"+itoa(module.ID), map[string]interface{}{"resource": "false"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	env.decode(t, &module)
	assert.False(t, module.HasResources())

	testutil.CreateResource(t, s.db, "Worksheet", "https://drive.example.com/w.pdf", module.ID)
	resp, env = s.request(t, http.MethodDelete, "/api/modules/"+itoa(module.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"resources":1`)

	resp, _ = s.request(t, http.MethodGet, "/api/modules/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResourceLifecycle(t *testing.T) {
	s := newTestServer(t)
	pkg := testutil.CreatePackage(t, s.db, "Starter")
	course := testutil.CreateCourse(t, s.db, "SEO", pkg.ID)
	module := testutil.CreateModule(t, s.db, "Keywords", course.ID)
	otherModule := testutil.CreateModule(t, s.db, "Links", course.ID)

	resp, env := s.request(t, http.MethodGet, "/api/resources/check-module/"+itoa(module.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"isReferenced":false}`, string(env.Data))

	resp, env = s.multipartRequest(t, http.MethodPost, "/api/resources/upload", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "File upload failed.", env.Message)

	resp, env = s.multipartRequest(t, http.MethodPost, "/api/resources/upload", nil, formFile{"file", "guide.pdf", []byte("%PDF")})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var upload struct {
		Resource string `json:"resource"`
		Path     string `json:"path"`
	}
	env.decode(t, &upload)
	assert.Equal(t, "http://example.com/api/uploads/"+filepath.Base(upload.Path), upload.Resource)
	_, err := os.Stat(upload.Path)
	require.NoError(t, err)

	// the console registers with PUT
	resp, env = s.request(t, http.MethodPut, "/api/resources", map[string]interface{}{
		"title": "Guide", "resource": upload.Resource, "module": module.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var created struct {
		ID       uint   `json:"id"`
		Resource string `json:"resource"`
		URL      string `json:"url"`
		Module   uint   `json:"module"`
	}
	env.decode(t, &created)
	assert.Equal(t, module.ID, created.Module)
	assert.Equal(t, upload.Resource, created.URL)

	resp, _ = s.request(t, http.MethodPost, "/api/resources", map[string]interface{}{
		"title": "Orphan", "resource": "https://x.example.com/a.pdf", "module": 999,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.request(t, http.MethodPost, "/api/resources", map[string]interface{}{"title": "Incomplete"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	_, env = s.request(t, http.MethodGet, "/api/resources/check-module/"+itoa(module.ID), nil)
	assert.JSONEq(t, `{"isReferenced":true}`, string(env.Data))

	testutil.CreateResource(t, s.db, "Links sheet", "https://drive.example.com/links.pdf", otherModule.ID)

	var list []map[string]interface{}
	_, env = s.request(t, http.MethodGet, "/api/resources", nil)
	env.decode(t, &list)
	assert.Len(t, list, 2)

	_, env = s.request(t, http.MethodGet, "/api/resources/"+itoa(module.ID), nil)
	env.decode(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Guide", list[0]["title"])

	// pointing at an external link deletes the uploaded file
	resp, env = s.request(t, http.MethodPut, "/api/resources/"+itoa(created.ID), map[string]interface{}{
		"resource": "https://drive.example.com/guide-v2.pdf",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var updated map[string]interface{}
	env.decode(t, &updated)
	assert.Equal(t, "old file deleted", updated["fileStatus"])
	_, err = os.Stat(upload.Path)
	assert.True(t, os.IsNotExist(err))

	resp, env = s.request(t, http.MethodPut, "/api/resources/"+itoa(created.ID), map[string]interface{}{"title": "Guide v2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env.decode(t, &updated)
	assert.Equal(t, "unchanged", updated["fileStatus"])

	// deleting removes a local file too
	local := filepath.Join(config.AppConfig.UploadDir, "local.pdf")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0644))
	res := testutil.CreateResource(t, s.db, "Local", local, module.ID)
	resp, _ = s.request(t, http.MethodDelete, "/api/resources/"+itoa(res.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = os.Stat(local)
	assert.True(t, os.IsNotExist(err))

	resp, _ = s.request(t, http.MethodDelete, "/api/resources/"+itoa(res.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResourceSharedFileIsKept(t *testing.T) {
	s := newTestServer(t)
	pkg := testutil.CreatePackage(t, s.db, "Starter")
	course := testutil.CreateCourse(t, s.db, "SEO", pkg.ID)
	module := testutil.CreateModule(t, s.db, "Keywords", course.ID)

	shared := filepath.Join(config.AppConfig.UploadDir, "shared.pdf")
	require.NoError(t, os.WriteFile(shared, []byte("%PDF"), 0644))
	first := testutil.CreateResource(t, s.db, "Guide", shared, module.ID)
	second := testutil.CreateResource(t, s.db, "Guide copy", "http://example.com/api/uploads/shared.pdf", module.ID)

	resp, _ := s.request(t, http.MethodDelete, "/api/resources/"+itoa(first.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err := os.Stat(shared)
	require.NoError(t, err, "file is still used by the second resource")

	resp, env := s.request(t, http.MethodPut, "/api/resources/"+itoa(second.ID), map[string]interface{}{
		"resource": "https://drive.example.com/guide.pdf",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var updated map[string]interface{}
	env.decode(t, &updated)
	assert.Equal(t, "old file deleted", updated["fileStatus"])
	_, err = os.Stat(shared)
	assert.True(t, os.IsNotExist(err))
}

func TestResourceForeignUploadURLIsNotDeleted(t *testing.T) {
	s := newTestServer(t)
	pkg := testutil.CreatePackage(t, s.db, "Starter")
	course := testutil.CreateCourse(t, s.db, "SEO", pkg.ID)
	module := testutil.CreateModule(t, s.db, "Keywords", course.ID)

	local := filepath.Join(config.AppConfig.UploadDir, "guide.pdf")
	require.NoError(t, os.WriteFile(local, []byte("%PDF"), 0644))
	res := testutil.CreateResource(t, s.db, "Guide", "https://cdn.other.example/api/uploads/guide.pdf", module.ID)

	resp, env := s.request(t, http.MethodPut, "/api/resources/"+itoa(res.ID), map[string]interface{}{
		"resource": "https://drive.example.com/guide.pdf",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var updated map[string]interface{}
	env.decode(t, &updated)
	assert.Equal(t, "replaced", updated["fileStatus"])

	resp, _ = s.request(t, http.MethodDelete, "/api/resources/"+itoa(res.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err := os.Stat(local)
	assert.NoError(t, err)
}

func TestDeleteCourse_ReferenceCountFails(t *testing.T) {
	s := newTestServer(t)
	pkg := testutil.CreatePackage(t, s.db, "Starter")
	course := testutil.CreateCourse(t, s.db, "SEO", pkg.ID)
	testutil.CreateModule(t, s.db, "Keywords", course.ID)

	require.NoError(t, s.db.Callback().Query().Before("gorm:query").Register("test:fail_modules", func(tx *gorm.DB) {
		if tx.Statement.Table == "modules" {
			_ = tx.AddError(errors.New("database is locked"))
		}
	}))

	resp, env := s.request(t, http.MethodDelete, "/api/courses/"+itoa(course.ID), nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to delete course!", env.Message)

	var left int64
	require.NoError(t, s.db.Model(&courseModels.Course{}).Where("id = ?", course.ID).Count(&left).Error)
	assert.Equal(t, int64(1), left)
}

func TestConsoleSendsIDsAsStrings(t *testing.T) {
	s := newTestServer(t)
	pkg := testutil.CreatePackage(t, s.db, "Starter")

	resp, env := s.request(t, http.MethodPost, "/api/courses", map[string]interface{}{
		"title": "SEO", "description": "Rank higher", "preview": "https://youtu.be/seo", "package": itoa(pkg.ID),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var course courseModels.Course
	env.decode(t, &course)
	assert.Equal(t, pkg.ID, course.PackageID)

	resp, env = s.request(t, http.MethodPost, "/api/modules", map[string]interface{}{
		"title": "Keywords", "about": "Finding keywords", "video": "https://youtu.be/kw", "resource": "TRUE", "course": itoa(course.ID),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var module courseModels.Module
	env.decode(t, &module)
	assert.Equal(t, course.ID, module.CourseID)

	resp, env = s.request(t, http.MethodPut, "/api/resources", map[string]interface{}{
		"title": "Guide", "resource": "https://drive.example.com/g.pdf", "module": itoa(module.ID),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	resp, _ = s.request(t, http.MethodPost, "/api/modules", map[string]interface{}{
		"title": "Links", "about": "a", "video": "v", "resource": "FALSE", "course": "first",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
