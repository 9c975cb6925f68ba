package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"storefront/models"
)

const (
	orderNumberPrefix = "ORD"
	orderNumberDigits = 4
	//4位流水號，每日最多9999筆
	orderNumberMaxSequence = 9999
)

func orderNumberDatePrefix(now time.Time) string {
	return orderNumberPrefix + now.Format("20060102")
}

func formatOrderNumber(now time.Time, seq int) string {
	return fmt.Sprintf("%s%0*d", orderNumberDatePrefix(now), orderNumberDigits, seq)
}

// 由當日最後一筆訂單編號推算下一個序號，無法解析時從1開始
func nextSequence(last, prefix string) int {
	if last == "" || !strings.HasPrefix(last, prefix) || len(last) < orderNumberDigits {
		return 1
	}
	n, err := strconv.Atoi(last[len(last)-orderNumberDigits:])
	if err != nil {
		return 1
	}
	return n + 1
}

// 產生訂單編號 ORD + YYYYMMDD + 4位流水號，須在建立訂單的交易內呼叫
func NextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	prefix := orderNumberDatePrefix(now)

	var last []string
	err := tx.Unscoped().
		Model(&models.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &last).
		Error
	if err != nil {
		return "", err
	}

	lastNumber := ""
	if len(last) > 0 {
		lastNumber = last[0]
	}
	seq := nextSequence(lastNumber, prefix)
	if seq > orderNumberMaxSequence {
		return "", conflictError("order numbers for %s are used up", now.Format("2006-01-02"))
	}
	return formatOrderNumber(now, seq), nil
}
