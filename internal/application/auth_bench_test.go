package application

import (
	"context"
	"testing"
)

func BenchmarkLogin(b *testing.B) {
	f := newAuthFixture(b)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := f.svc.Login(ctx, "E1001", "secret", "127.0.0.1"); err != nil {
				b.Errorf("login failed: %v", err)
			}
		}
	})
}

func BenchmarkAuthenticate(b *testing.B) {
	f := newAuthFixture(b)
	ctx := context.Background()
	res, err := f.svc.Login(ctx, "E1001", "secret", "")
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.svc.Authenticate(ctx, res.BearerToken); err != nil {
			b.Fatalf("authenticate failed: %v", err)
		}
	}
}
