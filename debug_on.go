//go:build expectdebug

package expect

const debug = true
