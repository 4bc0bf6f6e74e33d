package etherscan

// NormalTx is one row of the account/txlist endpoint. All numeric fields
// arrive as decimal strings.
type NormalTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"` // wei
	IsError         string `json:"isError"`
	FunctionName    string `json:"functionName"`
	ContractAddress string `json:"contractAddress"`
}

// TokenTx is one row of the account/tokentx endpoint (ERC-20 transfers).
type TokenTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"` // smallest token unit
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
	ContractAddress string `json:"contractAddress"`
}

// AddressTag is one row of the nametag/getaddresstag endpoint.
type AddressTag struct {
	Address string `json:"address"`
	Nametag string `json:"nametag"`
}
