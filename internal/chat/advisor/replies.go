package advisor

// Canned advisor replies.

const (
	greetingText = `Hi! I'm Alex, your AI career advisor. I noticed you've been exploring our content - that's awesome! 

I'm here to help you find the perfect learning path based on your goals. What brings you here today?`

	consultationPitch = `Great! I'd love to set up a consultation for you. 

Before we proceed, could you tell me:
1. What's your current role or background?
2. What career goal are you working toward?
3. What's your biggest challenge right now?

This helps me match you with the right expert and make the most of your time.`

	coursesReply = `Perfect! We have several programs that might be ideal for you.

To recommend the best fit, I need to understand your situation better:

🎯 What specific skills are you looking to develop?
📈 What's your current experience level?
⏰ How much time can you dedicate to learning per week?

Based on your answers, I can show you personalized course recommendations with real outcomes from students with similar backgrounds.`

	transitionReply = `Career transitions are exciting! I've helped hundreds of professionals make successful switches.

Let me understand your situation:

• What field are you currently in?
• What industry/role are you targeting?
• What's prompting this change?
• What's your timeline?

I'll create a personalized roadmap based on your answers!`

	advancementReply = `Excellent goal! Career advancement is definitely achievable with the right strategy.

Here's what I typically see work best:

✅ Skill gap analysis (where you are vs where you need to be)
✅ Strategic networking within your target companies
✅ Demonstrating impact through high-visibility projects

Want me to walk you through a personalized advancement plan? I can show you exactly what professionals in your situation have done to land 20-40% salary increases.

What's your current role, and what level are you targeting?`

	helpReply = `No worries! Let me help you figure out the best next step.

Here are the most common goals I help with:

🚀 **Career Switch** - Transition to a new field/role
📚 **Skill Building** - Level up in your current domain  
💰 **Career Growth** - Promotion/salary increase
🎯 **Job Search** - Land your dream role
💡 **Exploration** - Discover new career possibilities

Which of these resonates most with your situation? Or is there something else you're working toward?`

	defaultReply = `That's interesting! Based on what you've shared and your engagement with our content, I think I can help you make real progress.

Here's what I'd recommend:

1. **Free Career Assessment** - Quick 5-minute quiz to identify your strengths and opportunities
2. **Personalized Learning Path** - Curated resources based on your goals
3. **Expert Consultation** - 15-minute call with a career advisor

Would you like to start with the assessment, or do you have specific questions about your career goals?

What's the #1 thing you'd like to achieve in the next 6 months?`

	bookingPitch = `Thank you for sharing that! Based on what you've told me, I can see a clear path forward.

Here's what I'd recommend as your next steps:

📞 **Free Career Strategy Call** - 15 minutes with a senior advisor
📋 **Personalized Learning Plan** - Tailored to your background  
🎯 **Success Framework** - Proven system used by 500+ professionals

The strategy call is especially valuable because:
• You'll get expert advice specific to your situation
• We'll identify hidden opportunities in your target market
• You'll leave with a clear 90-day action plan

Sound good? I can check availability right now - we have a few slots left this week.

[Book Your Free Strategy Call]

Or feel free to ask me any other questions!`
)
