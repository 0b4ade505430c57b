package classify

import "testing"

func TestAnalyzeMarkdown_FencedCode(t *testing.T) {
	src := "Intro.\n\n```sh\necho one\necho two\n```\n\nOutro.\n"
	st := AnalyzeMarkdown([]byte(src))

	for _, line := range []int{3, 4, 5, 6} {
		if !st.InCodeFence(line) {
			t.Errorf("line %d should be inside the fence", line)
		}
	}
	for _, line := range []int{1, 8} {
		if st.InCodeFence(line) {
			t.Errorf("line %d should be outside the fence", line)
		}
	}
}

func TestAnalyzeMarkdown_MultipleFences(t *testing.T) {
	src := "```\na\n```\n\nprose\n\n```\nb\n```\n"
	st := AnalyzeMarkdown([]byte(src))

	if !st.InCodeFence(2) || !st.InCodeFence(8) {
		t.Error("expected both fences detected")
	}
	if st.InCodeFence(5) {
		t.Error("prose between fences misdetected")
	}
}

func TestAnalyzeMarkdown_FrontMatter(t *testing.T) {
	src := "---\ntitle: Post\ntags: [\"dotfiles\"]\ncategories:\n  - dotfiles\n---\n\nBody tags: none here.\n"
	st := AnalyzeMarkdown([]byte(src))

	if !st.InFrontMatter(2) || !st.InFrontMatter(5) {
		t.Error("front matter range wrong")
	}
	if st.InFrontMatter(8) {
		t.Error("body misdetected as front matter")
	}
	if !st.InTagLine(3) {
		t.Error("tags line not detected")
	}
	if !st.InCategoryLine(4) || !st.InCategoryLine(5) {
		t.Error("categories key/list lines not detected")
	}
	if st.InTagLine(4) {
		t.Error("categories line misdetected as tags")
	}
}

func TestAnalyzeMarkdown_BlockTagList(t *testing.T) {
	src := "---\ntags:\n  - dotfiles\n  - zsh\ntitle: x\n---\n"
	st := AnalyzeMarkdown([]byte(src))

	for _, line := range []int{2, 3, 4} {
		if !st.InTagLine(line) {
			t.Errorf("line %d should be a tag line", line)
		}
	}
	if st.InTagLine(5) {
		t.Error("title line misdetected as tag line")
	}
}

func TestAnalyzeMarkdown_NoFrontMatter(t *testing.T) {
	src := "Just prose.\n\ntags: [\"dotfiles\"]\n"
	st := AnalyzeMarkdown([]byte(src))

	if st.InFrontMatter(1) {
		t.Error("no front matter expected")
	}
	// Inline tag lists outside front matter still count.
	if !st.InTagLine(3) {
		t.Error("inline tag list not detected")
	}
}

func TestAnalyzeText_YamlTagAndCategoryLines(t *testing.T) {
	st := AnalyzeText([]string{
		"title: Site",
		`tags: ["dotfiles", "zsh"]`,
		"categories:",
		"  - dotfiles",
		"description: plain",
	})

	if !st.InTagLine(2) {
		t.Error("tags line not detected")
	}
	if !st.InCategoryLine(3) || !st.InCategoryLine(4) {
		t.Error("categories key/list lines not detected")
	}
	if st.InTagLine(5) || st.InCodeFence(2) {
		t.Error("unrelated lines misdetected")
	}
}

func TestAnalyzeMarkdown_Empty(t *testing.T) {
	st := AnalyzeMarkdown(nil)
	if st.InCodeFence(1) || st.InFrontMatter(1) || st.InTagLine(1) {
		t.Error("empty source should have no structure")
	}
}
