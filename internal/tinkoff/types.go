package tinkoff

// MoneyValue is the API's fixed-point money encoding: units plus nano parts
// of 10^-9. Currency is set on price fields, empty on plain quantities.
type MoneyValue struct {
	Units    int64  `json:"units,string"`
	Nano     int32  `json:"nano"`
	Currency string `json:"currency"`
}

// Account is one entry of a GetAccounts response.
type Account struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// GetAccountsResponse is the UsersService/GetAccounts payload. Accounts is a
// pointer so a missing field is distinguishable from an empty listing.
type GetAccountsResponse struct {
	Accounts *[]Account `json:"accounts"`
}

// GetPortfolioRequest is the OperationsService/GetPortfolio payload.
type GetPortfolioRequest struct {
	AccountID string `json:"accountId"`
	Currency  string `json:"currency"`
}

// PortfolioPosition is one position of a GetPortfolio response.
type PortfolioPosition struct {
	Figi                 string      `json:"figi"`
	Ticker               string      `json:"ticker"`
	InstrumentType       string      `json:"instrumentType"`
	Quantity             *MoneyValue `json:"quantity"`
	AveragePositionPrice *MoneyValue `json:"averagePositionPrice"`
	ExpectedYield        *MoneyValue `json:"expectedYield"`
	CurrentPrice         *MoneyValue `json:"currentPrice"`
}

// GetPortfolioResponse is the OperationsService/GetPortfolio payload.
type GetPortfolioResponse struct {
	TotalAmountPortfolio *MoneyValue         `json:"totalAmountPortfolio"`
	Positions            []PortfolioPosition `json:"positions"`
}

// GetPositionsRequest is the OperationsService/GetPositions payload.
type GetPositionsRequest struct {
	AccountID string `json:"accountId"`
}

// SecurityPosition is one entry of the securities listing.
type SecurityPosition struct {
	Figi           string  `json:"figi"`
	Ticker         *string `json:"ticker"`
	InstrumentType string  `json:"instrumentType"`
	Balance        int64   `json:"balance,string"`
	Blocked        int64   `json:"blocked,string"`
	PositionUID    *string `json:"positionUid"`
}

// CurrencyPosition is one entry of the currencies listing.
type CurrencyPosition struct {
	Currency string `json:"currency"`
	Balance  int64  `json:"balance,string"`
	Blocked  int64  `json:"blocked,string"`
}

// FuturePosition is one entry of the futures listing.
type FuturePosition struct {
	Figi                 string      `json:"figi"`
	Ticker               *string     `json:"ticker"`
	Name                 *string     `json:"name"`
	Balance              int64       `json:"balance,string"`
	Blocked              int64       `json:"blocked,string"`
	PositionUID          *string     `json:"positionUid"`
	AveragePositionPrice *MoneyValue `json:"averagePositionPrice"`
	ExpectedYield        *MoneyValue `json:"expectedYield"`
	CurrentPrice         *MoneyValue `json:"currentPrice"`
}

// GetPositionsResponse is the OperationsService/GetPositions payload.
type GetPositionsResponse struct {
	Securities []SecurityPosition `json:"securities"`
	Currencies []CurrencyPosition `json:"currencies"`
	Futures    []FuturePosition   `json:"futures"`
}

// Instrument ID types for GetInstrumentBy.
const InstrumentIDTypeFigi = 1

// GetInstrumentByRequest is the InstrumentsService/GetInstrumentBy payload.
type GetInstrumentByRequest struct {
	IDType    int    `json:"idType"`
	ID        string `json:"id"`
	ClassCode string `json:"classCode"`
}

// Instrument is the nested instrument object of a GetInstrumentBy response.
type Instrument struct {
	Figi              *string     `json:"figi"`
	Ticker            *string     `json:"ticker"`
	ISIN              *string     `json:"isin"`
	Name              *string     `json:"name"`
	InstrumentType    *string     `json:"instrumentType"`
	Currency          *string     `json:"currency"`
	Lot               *int        `json:"lot"`
	MinPriceIncrement *MoneyValue `json:"minPriceIncrement"`
	Exchange          *string     `json:"exchange"`
	CountryOfRisk     *string     `json:"countryOfRisk"`
	Sector            *string     `json:"sector"`
	ClassCode         *string     `json:"classCode"`
}

// GetInstrumentByResponse is the InstrumentsService/GetInstrumentBy payload.
type GetInstrumentByResponse struct {
	Instrument *Instrument `json:"instrument"`
}
