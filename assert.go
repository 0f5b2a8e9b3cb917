package expect

func assert(ok bool, message string) {
	if debug && !ok {
		panic(message)
	}
}
