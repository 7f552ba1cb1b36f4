package model

// All returns every model managed by the schema migration, parents first
func All() []interface{} {
	return []interface{}{
		&Image{},
		&Story{},
		&Preparation{},
		&Product{},
		&ProductPreparation{},
		&Vendor{},
		&VendorProduct{},
		&Group{},
		&User{},
	}
}
