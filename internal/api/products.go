package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/talkincode/cafeorder/internal/domain"
	"github.com/talkincode/cafeorder/internal/filestore"
	"github.com/talkincode/cafeorder/internal/webserver"
	"github.com/talkincode/cafeorder/pkg/common"
)

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts, webserver.AdminOnly)
	webserver.ApiGET("/products/:id", getProduct, webserver.AdminOnly)
	webserver.ApiPOST("/products", createProduct, webserver.AdminOnly)
	// update keeps POST so multipart form uploads work the same as create
	webserver.ApiPOST("/products/:id", updateProduct, webserver.AdminOnly)
	webserver.ApiDELETE("/products/:id", deleteProduct, webserver.AdminOnly)
}

func listProducts(c echo.Context) error {
	db := GetDB(c).Model(&domain.Product{}).Preload("Category")

	// available defaults to true; pass available=false for the full hidden set
	available := true
	if v := c.QueryParam("available"); v != "" {
		available = v == "true"
	}
	db = db.Where("is_available = ?", available)

	if name := strings.TrimSpace(c.QueryParam("name")); name != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if cid := c.QueryParam("categoryId"); cid != "" {
		id, err := strconv.ParseInt(cid, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Invalid category ID")
		}
		db = db.Where("category_id = ?", id)
	}

	order := "timestamp DESC"
	if strings.EqualFold(c.QueryParam("sortDir"), "asc") {
		order = "timestamp ASC"
	}

	var products []domain.Product
	if err := db.Order(order).Find(&products).Error; err != nil {
		return failErr(c, err)
	}
	return ok(c, products, "Products retrieved successfully")
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID")
	}
	var product domain.Product
	if err := GetDB(c).Preload("Category").Where("id = ?", id).First(&product).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "Product not found: "+c.Param("id"))
	} else if err != nil {
		return failErr(c, err)
	}
	return ok(c, product, "Product retrieved successfully")
}

// productForm reads the multipart form fields shared by create and update.
func productForm(c echo.Context) (*domain.Product, error) {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" || len(name) > 100 {
		return nil, errors.New("Product name is required and must not exceed 100 characters")
	}

	categoryID, err := strconv.ParseInt(c.FormValue("categoryId"), 10, 64)
	if err != nil {
		return nil, errors.New("Category ID is required")
	}

	description := c.FormValue("description")
	if len(description) > 255 {
		return nil, errors.New("Description must not exceed 255 characters")
	}

	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil || price.Sign() <= 0 {
		return nil, errors.New("Price is required and must be greater than 0")
	}

	product := &domain.Product{
		Name:        name,
		CategoryID:  categoryID,
		Description: description,
		Price:       price,
		Available:   true,
	}

	if v := c.FormValue("isAvailable"); v != "" {
		product.Available = v == "true"
	}
	if v := c.FormValue("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			return nil, errors.New("Stock cannot be negative")
		}
		product.Stock = &stock
	}
	return product, nil
}

func createProduct(c echo.Context) error {
	form, err := productForm(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	var category domain.Category
	if err := GetDB(c).Where("id = ?", form.CategoryID).First(&category).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "Category not found with id: "+c.FormValue("categoryId"))
	} else if err != nil {
		return failErr(c, err)
	}

	if file, err := c.FormFile("image"); err == nil {
		name, err := webserver.GetFileStore(c).Store(file, "")
		if errors.Is(err, filestore.ErrInvalidExtension) {
			return fail(c, http.StatusBadRequest, err.Error())
		} else if err != nil {
			return failErr(c, err)
		}
		form.Image = name
	}

	form.ID = common.UUIDint64()
	form.Timestamp = time.Now()
	if err := GetDB(c).Create(form).Error; err != nil {
		return failErr(c, err)
	}
	form.Category = &category
	return ok(c, form, "Product created successfully")
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID")
	}
	var product domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&product).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "Product not found: "+c.Param("id"))
	} else if err != nil {
		return failErr(c, err)
	}

	form, err := productForm(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	var category domain.Category
	if err := GetDB(c).Where("id = ?", form.CategoryID).First(&category).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "Category not found with id: "+c.FormValue("categoryId"))
	} else if err != nil {
		return failErr(c, err)
	}

	product.Name = form.Name
	product.CategoryID = form.CategoryID
	product.Description = form.Description
	product.Stock = form.Stock
	product.Price = form.Price
	product.Available = form.Available
	product.Timestamp = time.Now()

	if file, err := c.FormFile("image"); err == nil {
		name, err := webserver.GetFileStore(c).Store(file, product.Image)
		if errors.Is(err, filestore.ErrInvalidExtension) {
			return fail(c, http.StatusBadRequest, err.Error())
		} else if err != nil {
			return failErr(c, err)
		}
		product.Image = name
	}

	if err := GetDB(c).Save(&product).Error; err != nil {
		return failErr(c, err)
	}
	product.Category = &category
	return ok(c, product, "Product updated successfully")
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID")
	}
	var product domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&product).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "Product not found: "+c.Param("id"))
	} else if err != nil {
		return failErr(c, err)
	}

	// a product referenced by order lines must never be deleted
	var refs int64
	if err := GetDB(c).Model(&domain.OrderDetail{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
		return failErr(c, err)
	}
	if refs > 0 {
		return fail(c, http.StatusConflict, "Product is still referenced by order details")
	}

	if err := GetDB(c).Delete(&product).Error; err != nil {
		return failErr(c, err)
	}
	if product.Image != "" {
		webserver.GetFileStore(c).Remove(product.Image)
	}
	return ok(c, nil, "Product deleted successfully")
}
