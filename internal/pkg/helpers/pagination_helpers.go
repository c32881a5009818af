package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/alumnidesk/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1 // Default page is 1-based
)

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = NormalizePage(page, size)

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	} else if page == 1 {
		totalPages = 1
	}

	// Ensure currentPage never exceeds totalPages
	currentPage := page
	if totalPages > 0 && currentPage > totalPages {
		currentPage = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// NormalizePage clamps page and size to usable values
func NormalizePage(page, size int) (int, int) {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	return page, size
}

// ParsePaginationParams extracts and validates pagination parameters from the request
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = DefaultPage
	}
	size, err = strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(DefaultPageSize)))
	if err != nil {
		size = DefaultPageSize
	}
	return NormalizePage(page, size)
}

// CalculateSliceIndices calculates the start and end indices for slicing an array for pagination
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	page, size = NormalizePage(page, size)

	start = (page - 1) * size
	end = start + size

	if start >= totalItems {
		start = totalItems
		end = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return start, end
}

// Paginate returns the requested page of items and its pagination info
func Paginate[T any](items []T, page, size int) ([]T, dto.PaginationInfo) {
	page, size = NormalizePage(page, size)
	start, end := CalculateSliceIndices(page, size, len(items))
	return items[start:end], NewPaginationInfo(int64(len(items)), page, size)
}
