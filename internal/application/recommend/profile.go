package recommend

import "math"

// ratingMidpoint 中性评分：恰好不推动兴趣向量
const ratingMidpoint = 3

// UpdateProfileVector 按评分把论文向量揉进项目兴趣向量
// weight = (rating - 3) × step，好评拉近、差评推远、中评不动。
// 结果做单位归一化；范数为零时原样返回，避免除零。
func UpdateProfileVector(profile, paper []float32, rating int, step float64) []float32 {
	weight := float64(rating-ratingMidpoint) * step

	dim := len(profile)
	if len(paper) > dim {
		dim = len(paper)
	}

	raw := make([]float32, dim)
	for i := 0; i < dim; i++ {
		var v float64
		if i < len(profile) {
			v = float64(profile[i])
		}
		if i < len(paper) {
			v += weight * float64(paper[i])
		}
		raw[i] = float32(v)
	}

	return Normalize(raw)
}

// Normalize 单位归一化；零向量原样返回
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// CosineSimilarity 余弦相似度；任一向量为零返回 0
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
