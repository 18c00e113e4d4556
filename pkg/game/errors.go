package game

import "errors"

// ErrInvalidArgument 契约违规错误
// 空类型名、重复注册、越界的周期下标等编程期错误都包装此错误返回，
// 调用方用 errors.Is(err, game.ErrInvalidArgument) 判断
var ErrInvalidArgument = errors.New("invalid argument")
