package types

// Variant は、メタデータ抽出とカード描画の振る舞いの組み合わせを表します。
type Variant string

const (
	// VariantA はプレースホルダー画像、URL表示、定型文フィルタリングを有効にします。
	VariantA Variant = "A"
	// VariantB は画像なしの場合に空文字を残し、カードに説明文を表示します。
	VariantB Variant = "B"
)

// Valid は既知のバリアントかどうかを返します。
func (v Variant) Valid() bool {
	return v == VariantA || v == VariantB
}

// Collection は、リンクファイルの見出し1つ分のリンクのまとまりです。
type Collection struct {
	Name  string   // 表示名
	Slug  string   // 出力ファイル名の基になる識別子
	Links []string // ファイル内の出現順。重複も保持する
}

// LinkMetadata は、1つのリンクから抽出したメタデータです。
// Title は常に空ではありません (最低でもホスト名が入ります)。
type LinkMetadata struct {
	URL         string
	Title       string
	Description string
	Image       string
	Success     bool // 取得と解析が成功したかどうか
}

// CollectionResult は、コレクションと同じ長さ・同じ順序のメタデータを保持します。
// Scraperの出力、Rendererの入力として利用されます。
type CollectionResult struct {
	Collection
	Metadata []LinkMetadata
}

// Failures は取得に失敗したリンクの件数を返します。
func (r CollectionResult) Failures() int {
	n := 0
	for _, m := range r.Metadata {
		if !m.Success {
			n++
		}
	}
	return n
}
