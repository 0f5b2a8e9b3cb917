//go:build !expectdebug

package expect

const debug = false
