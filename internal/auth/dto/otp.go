package dto

type SendOtpInput struct {
	Recipient string `json:"recipient"`
	Purpose   string `json:"purpose"`
}

type VerifyOtpInput struct {
	Recipient string `json:"recipient"`
	Purpose   string `json:"purpose"`
	Code      string `json:"code"`
	ClientIP  string `json:"-"`
}
