package boardauth

// Generator hooks for deterministic tests in boardauth_test.

func (b *Builder) WithCodeGenerator(f func() (string, error)) *Builder {
	b.codeGen = f
	return b
}

func (b *Builder) WithResetTokenGenerator(f func() (string, error)) *Builder {
	b.resetGen = f
	return b
}

func (b *Builder) WithRefreshTokenGenerator(f func() (string, error)) *Builder {
	b.refreshGen = f
	return b
}
