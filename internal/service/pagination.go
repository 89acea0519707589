package service

import "strconv"

// ParsePage 解析页码；非数字或小于1时为第1页
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ClampPage 超出范围的页码收敛到最后一页；没有数据时为第1页
func ClampPage(page int, total int64, pageSize int) (int, int) {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		return 1, 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page, totalPages
}
