package dto

type TariffPurchaseRequest struct {
	Tariff string `json:"tariff"`
}

type TariffPurchaseResponse struct {
	OK     bool   `json:"ok"`
	Tariff string `json:"tariff"`
}

type PointsPurchaseRequest struct {
	Amount int `json:"amount"`
}

type PointsPurchaseResponse struct {
	OK      bool `json:"ok"`
	Balance int  `json:"balance"`
}
