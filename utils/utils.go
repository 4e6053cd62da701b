package utils

import (
	"fmt"
	"gsp/config"
	"log"
	"math/rand"
	"time"

	"github.com/go-resty/resty/v2"
)

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	otp := ""
	for i := 0; i < 6; i++ {
		otp += fmt.Sprintf("%d", rng.Intn(10))
	}
	return otp
}

// SendOTPToMobile ships a login OTP through the SMS gateway
func SendOTPToMobile(mobile, otp string) error {
	client := resty.New().SetTimeout(10 * time.Second)

	resp, err := client.R().
		SetQueryParams(map[string]string{
			"authorization":    config.AppConfig.SmsApiKey,
			"route":            "otp",
			"sender_id":        config.AppConfig.SmsSenderID,
			"variables_values": otp,
			"flash":            "0",
			"numbers":          mobile,
		}).
		Get(config.AppConfig.SmsApiUrl)
	if err != nil {
		log.Printf("Error sending OTP to %s: %v", mobile, err)
		return err
	}

	if resp.IsError() {
		log.Printf("SMS gateway returned %d: %s", resp.StatusCode(), resp.String())
		return fmt.Errorf("sms gateway error: %d", resp.StatusCode())
	}

	return nil
}
