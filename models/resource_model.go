package models

type Resource struct {
	ID       int64  `db:"id" json:"id"`
	Method   string `db:"method" json:"method"`
	Endpoint string `db:"endpoint" json:"endpoint"`
	Requests int64  `db:"requests" json:"requests"`
}

type ResourcesRes struct {
	Resources []Resource `json:"resources"`
}
