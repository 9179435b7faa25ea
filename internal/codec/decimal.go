package codec

import (
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
)

func decimalToFloat(d decimal.Decimal) (float64, error) {
	f, err := strconv.ParseFloat(d.String(), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse decimal %s", d.String())
	}
	return f, nil
}

func floatToDecimal(f float64) (decimal.Decimal, error) {
	var d decimal.Decimal
	raw := strconv.Quote(strconv.FormatFloat(f, 'f', -1, 64))
	if err := sonic.ConfigStd.UnmarshalFromString(raw, &d); err != nil {
		return d, errors.Wrapf(err, "decimal from %v", f)
	}
	return d, nil
}
