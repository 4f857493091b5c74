package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talkincode/cafeorder/internal/domain"
	"github.com/talkincode/cafeorder/internal/webserver"
	"github.com/talkincode/cafeorder/pkg/common"
)

type categoryPayload struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
}

func registerCategoryRoutes() {
	webserver.ApiGET("/categories", listCategories, webserver.AdminOnly)
	webserver.ApiGET("/categories/:id", getCategory, webserver.AdminOnly)
	webserver.ApiPOST("/categories", createCategory, webserver.AdminOnly)
	webserver.ApiPUT("/categories/:id", updateCategory, webserver.AdminOnly)
	webserver.ApiDELETE("/categories/:id", deleteCategory, webserver.AdminOnly)
}

func listCategories(c echo.Context) error {
	var categories []domain.Category
	if err := GetDB(c).Order("id").Find(&categories).Error; err != nil {
		return failErr(c, err)
	}
	if len(categories) == 0 {
		return ok(c, nil, "No categories found")
	}
	return ok(c, categories, "Categories retrieved successfully")
}

func getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID")
	}
	var category domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&category).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "Category not found with id: "+c.Param("id"))
	} else if err != nil {
		return failErr(c, err)
	}
	return ok(c, category, "Category retrieved successfully")
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse category")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Category name is required")
	}

	category := domain.Category{
		ID:          common.UUIDint64(),
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
	}
	if err := GetDB(c).Create(&category).Error; err != nil {
		return failErr(c, err)
	}
	return ok(c, category, "Category created successfully")
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID")
	}
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse category")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Category name is required")
	}

	var category domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&category).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "Category not found with id: "+c.Param("id"))
	} else if err != nil {
		return failErr(c, err)
	}

	category.Name = strings.TrimSpace(payload.Name)
	category.Description = payload.Description
	category.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&category).Error; err != nil {
		return failErr(c, err)
	}
	return ok(c, category, "Category updated successfully")
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID")
	}

	var category domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&category).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "Category not found with id: "+c.Param("id"))
	} else if err != nil {
		return failErr(c, err)
	}

	// refuse deletion while products still reference the category
	var products int64
	if err := GetDB(c).Model(&domain.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
		return failErr(c, err)
	}
	if products > 0 {
		return fail(c, http.StatusConflict, "Category is still referenced by products")
	}

	if err := GetDB(c).Delete(&category).Error; err != nil {
		return failErr(c, err)
	}
	return ok(c, nil, "Category deleted successfully")
}
