package domain

var Tables = []interface{}{
	// System
	&SysUser{},
	&TokenBlacklist{},
	// Catalog
	&Category{},
	&Product{},
	// Orders
	&Order{},
	&OrderDetail{},
}
