package shared

import "errors"

// CurrencyDZD 阿尔及利亚第纳尔，店铺唯一币种
const CurrencyDZD = "DZD"

// Money 值对象 - 表示金额（整数第纳尔，无小数部分）
type Money struct {
	amount   int64
	currency string
}

// NewMoney 创建新的Money值对象
func NewMoney(amount int64, currency string) Money {
	return Money{amount: amount, currency: currency}
}

// DZD 以第纳尔创建金额
func DZD(amount int64) Money {
	return NewMoney(amount, CurrencyDZD)
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

// Add 金额相加，返回新的Money值对象
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, errors.New("cannot add money with different currencies")
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Equals 比较两个Money值对象是否相等
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}
