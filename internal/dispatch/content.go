package dispatch

import (
	"fmt"

	"github.com/lewisedginton/line_companion_bot/internal/messaging"
)

// MenuTrigger is the exact text that opens the menu without classification.
const MenuTrigger = "功能選單"

const (
	menuText = "我能怎麼幫您呢？"

	// StoryStartText opens the relationship story.
	StoryStartText = "當蘇珊與阿俊第一次相遇時，他們都覺得彼此是命中注定的另一半。蘇珊是一位善解人意、體貼的女子，而阿俊則是個幽默風趣、充滿自信的男人。他們的感情一開始非常甜蜜，彼此之間充滿了無盡的愛意。隨著時間的推移，蘇珊發現自己在這段關係中越來越多地付出。她每天為阿俊準備早餐，幫他整理房間，甚至在他忙於工作時為他跑腿辦事。阿俊起初對蘇珊的關愛表示感激，常常讚美她的體貼和周到。然而，隨著日子一天天過去，阿俊漸漸習慣了蘇珊的付出，並開始將這些努力視為理所當然。有一天，蘇珊下班後拖著疲憊的身軀回到家，發現阿俊正舒適地躺在沙發上看電視。蘇珊輕聲問道：「阿俊，今天晚餐你想吃什麼？」阿俊頭也不回地回答：「隨便，妳做什麼都行。」這句話深深刺痛了蘇珊的心，她感到自己的努力與付出被完全忽視。"

	// StoryQuestion follows the story start.
	StoryQuestion = "\n如果你是蘇珊你會怎麼做呢？"

	// StoryEndText concludes the story.
	StoryEndText = "蘇珊深吸一口氣，忍住即將落下的淚水，說道：「我當然願意照顧你，但這不是單方面的。我需要你的支持和關心，這樣我們的關係才能更加健康和諧。」阿俊終於意識到蘇珊的困擾。他回憶起過去那些被他忽略的細節，發現自己確實在無意中忽視了蘇珊的感受和付出。他誠懇地道歉，並承諾會改變，更多地參與到兩人的生活中，共同分擔責任。從那天起，阿俊開始主動分擔家務，關心蘇珊的需求，並經常給她帶來小小的驚喜。他們的關係也因此變得更加親密和堅定。蘇珊感受到阿俊的改變，心中那份失落感逐漸被幸福取代。這個故事告訴我們，在兩性交往中，雙方的付出和關心是維繫關係的重要基石。只有在彼此互相支持和理解的基礎上，愛情才能夠長久地走下去。"

	// GuideText is the non-violent communication script.
	GuideText = "非暴力溝通\n1. 發生什麼事了？跟我分享可以嗎？\n2. 跟我說說你的感受\n3. 提出請求，怎麼樣能夠真正幫助你呢？"

	// UndecidedText is sent when the sentiment cannot be determined.
	UndecidedText = "無法判斷你的回覆。"
)

// MenuReply is the fixed menu with its five quick actions.
func MenuReply() messaging.Reply {
	return messaging.Reply{
		Text: menuText,
		QuickActions: []messaging.QuickAction{
			messaging.URIAction("情緒日記", "https://liff.line.me/2005781692-mkwZ19g6"),
			messaging.URIAction("認識情緒", "https://liff.line.me/2005781692-JVRmrwoZ"),
			messaging.MessageAction("每日精選書籍", "每日推薦書籍"),
			messaging.MessageAction("故事分享", "故事分享"),
			messaging.MessageAction("非暴力溝通", "非暴力溝通"),
		},
	}
}

func bookPrompt(mood string) string {
	return fmt.Sprintf("請幫我推薦一本書就好，符合我今天的心情：%s，只要書名以及介紹文字，請不要回傳特殊符號", mood)
}

func positivePrompt(text string) string {
	return fmt.Sprintf("以下是用戶的回覆：'%s'。", text)
}

func negativePrompt(text string) string {
	return fmt.Sprintf("以下是用戶的回覆：'%s'。請將句中負面、有爭議的詞彙替換成較委婉的詞彙。", text)
}
