package route

import "github.com/go-gl/mathgl/mgl32"

func vec(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x, y, z} }

func finish(x, y, z float32) *mgl32.Vec3 {
	v := vec(x, y, z)
	return &v
}

// Default returns the built-in route catalog.
func Default() *Catalog {
	return NewCatalog(
		Info{
			ID: "Akina_Downhill", Name: "Akina Downhill", Scene: "Akina",
			StartP1: "StartingPointP1", StartP2: "StartingPointP2", FinishZone: "FinishZone",
			FallbackP1: vec(-177, 476, -996), FallbackP2: vec(-182, 476, -996),
			FallbackRotation: Euler(0, 180, 0),
		},
		Info{
			ID: "Akina_Uphill", Name: "Akina Uphill", Scene: "Akina",
			StartP1: "StartingPointP1_Reverse", StartP2: "StartingPointP2_Reverse", FinishZone: "FinishZone_Reverse",
			FallbackP1: vec(-1380.21, -145.24, -1100.04), FallbackP2: vec(-1382.58, -145.24, -1098.29),
			FallbackRotation: Euler(0.44, 31.11, 0),
			CustomFinish:     finish(875.12, 136.17, 1144.51),
		},
		Info{
			ID: "Akagi_Downhill", Name: "Akagi Downhill", Scene: "AKAGI",
			StartP1: "StartingPointP1_Reverse", StartP2: "StartingPointP2_Reverse", FinishZone: "FinishZone_Reverse",
			FallbackP1: vec(-337.15, 140.59, -1047.06), FallbackP2: vec(-342, 140.59, -1047.06),
			FallbackRotation: Euler(359.53, 187.47, 0),
		},
		Info{
			ID: "Akagi_Uphill", Name: "Akagi Uphill", Scene: "AKAGI",
			StartP1: "StartingPointP1", StartP2: "StartingPointP2", FinishZone: "FinishZone",
			FallbackP1: vec(686.56, -133.93, 331.96), FallbackP2: vec(681, -133.93, 331.96),
			FallbackRotation: Euler(357.35, 303.44, 0),
			CustomFinish:     finish(-337.15, 140.59, -1047.06),
		},
		Info{
			ID: "Irohazaka_Downhill", Name: "Irohazaka Downhill", Scene: "IROHAZAKA",
			StartP1: "StartingPointP1", StartP2: "StartingPointP2", FinishZone: "FinishZone",
			FallbackP1: vec(0, 400, 0), FallbackP2: vec(-5, 400, 0),
			FallbackRotation: Euler(0, 180, 0),
		},
		Info{
			ID: "Irohazaka_Uphill", Name: "Irohazaka Uphill", Scene: "IROHAZAKA",
			StartP1: "StartingPointP1_Reverse", StartP2: "StartingPointP2_Reverse", FinishZone: "FinishZone_Reverse",
			FallbackP1: vec(-1309, -288.36, 217.47), FallbackP2: vec(-1316.79, -288.80, 217.47),
			FallbackRotation: Euler(355.13, 130, 0),
			CustomFinish:     finish(-247, 204, 555),
		},
		Info{
			ID: "Usui_Downhill", Name: "Usui Downhill", Scene: "USUI",
			StartP1: "StartingPointP1", StartP2: "StartingPointP2", FinishZone: "FinishZone",
			FallbackP1: vec(1366.83, 66.03, 784.26), FallbackP2: vec(1366.64, 66.07, 779.14),
			FallbackRotation: Euler(0.21, 272.14, 359.58),
		},
		Info{
			ID: "Usui_Uphill", Name: "Usui Uphill", Scene: "USUI",
			StartP1: "StartingPointP1_Reverse", StartP2: "StartingPointP2_Reverse", FinishZone: "FinishZone_Reverse",
			FallbackP1: vec(-1553.90, -213.33, -715.23), FallbackP2: vec(-1558.73, -213.40, -715.97),
			FallbackRotation: Euler(0.33, 352.15, 0),
			CustomFinish:     finish(1366.83, 66.08, 784.26),
		},
		Info{
			ID: "Myogi_Downhill", Name: "Myogi Downhill", Scene: "MYOGI",
			StartP1: "StartingPointP1", StartP2: "StartingPointP2", FinishZone: "FinishZone",
			FallbackP1: vec(0, 300, 0), FallbackP2: vec(-5, 300, 0),
			FallbackRotation: Euler(0, 180, 0),
		},
		Info{
			ID: "Myogi_Uphill", Name: "Myogi Uphill", Scene: "MYOGI",
			StartP1: "StartingPointP1_Reverse", StartP2: "StartingPointP2_Reverse", FinishZone: "FinishZone_Reverse",
			FallbackP1: vec(0, 100, 400), FallbackP2: vec(-5, 100, 400),
			FallbackRotation: Euler(0, 0, 0),
		},
	)
}
